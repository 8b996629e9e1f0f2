package main

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"

	"craftmart/internal/client"
	"craftmart/internal/domain"
)

func loginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "print a bearer token for MARKET_TOKEN",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "phone", Required: true},
			&cli.StringFlag{Name: "password", Required: true},
		},
		Action: func(c *cli.Context) error {
			e, err := open(c, false)
			if err != nil {
				return err
			}
			tok, err := e.api.Login(c.Context, c.String("phone"), c.String("password"))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(c.App.Writer, tok)
			return err
		},
	}
}

func registerCommand() *cli.Command {
	return &cli.Command{
		Name:  "register",
		Usage: "create an account and print its token",
		Flags: append([]cli.Flag{
			&cli.StringFlag{Name: "name", Required: true},
			&cli.StringFlag{Name: "phone", Required: true},
			&cli.StringFlag{Name: "password", Required: true},
			&cli.StringFlag{Name: "role", Value: string(domain.RoleBuyer), Usage: "buyer, seller or both"},
			&cli.BoolFlag{Name: "custom-orders", Usage: "accept custom orders as a seller"},
		}, addressFlags()...),
		Action: func(c *cli.Context) error {
			e, err := open(c, false)
			if err != nil {
				return err
			}
			u := domain.User{
				Name:           c.String("name"),
				Phone:          c.String("phone"),
				Role:           domain.Role(c.String("role")),
				UserAdditional: domain.UserAdditional{CustomOrder: c.Bool("custom-orders")},
			}
			if a := addressFrom(c); a != nil {
				u.Address = *a
			}
			tok, err := e.api.Register(c.Context, client.Registration{User: u, Password: c.String("password")})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(c.App.Writer, tok)
			return err
		},
	}
}

func whoamiCommand() *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "show the profile behind the token",
		Action: func(c *cli.Context) error {
			e, err := open(c, true)
			if err != nil {
				return err
			}
			u, err := e.sess.User()
			if err != nil {
				return err
			}
			return printJSON(c, u)
		},
	}
}

func productsCommand() *cli.Command {
	return &cli.Command{
		Name:  "products",
		Usage: "browse and manage the catalog",
		Subcommands: []*cli.Command{
			{
				Name: "latest",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "page", Value: 0},
					&cli.IntFlag{Name: "size", Value: 12},
				},
				Action: func(c *cli.Context) error {
					e, err := open(c, false)
					if err != nil {
						return err
					}
					page, err := e.api.LatestProducts(c.Context, c.Int("page"), c.Int("size"))
					if err != nil {
						return err
					}
					return printJSON(c, page)
				},
			},
			{
				Name: "filter",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name"},
					&cli.StringFlag{Name: "location"},
					&cli.Int64Flag{Name: "category"},
					&cli.StringFlag{Name: "min"},
					&cli.StringFlag{Name: "max"},
				},
				Action: func(c *cli.Context) error {
					e, err := open(c, false)
					if err != nil {
						return err
					}
					f, err := filterFrom(c)
					if err != nil {
						return err
					}
					list, err := e.api.FilterProducts(c.Context, f)
					if err != nil {
						return err
					}
					return printJSON(c, list)
				},
			},
			{
				Name:  "seller",
				Usage: "storefront of one seller",
				Flags: []cli.Flag{&cli.Int64Flag{Name: "id", Required: true}},
				Action: func(c *cli.Context) error {
					e, err := open(c, false)
					if err != nil {
						return err
					}
					list, err := e.api.SellerProducts(c.Context, c.Int64("id"))
					if err != nil {
						return err
					}
					return printJSON(c, list)
				},
			},
			{
				Name: "categories",
				Action: func(c *cli.Context) error {
					e, err := open(c, true)
					if err != nil {
						return err
					}
					list, err := e.api.Categories(c.Context)
					if err != nil {
						return err
					}
					return printJSON(c, list)
				},
			},
			{
				Name:  "mine",
				Usage: "products of the logged in seller",
				Action: func(c *cli.Context) error {
					e, err := open(c, true)
					if err != nil {
						return err
					}
					list, err := e.api.OwnerProducts(c.Context)
					if err != nil {
						return err
					}
					return printJSON(c, list)
				},
			},
			{
				Name:  "save",
				Usage: "create a product, or update it with --id",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "id"},
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "price", Required: true},
					&cli.StringFlag{Name: "unit", Value: string(domain.UnitPiece)},
					&cli.Int64Flag{Name: "category"},
					&cli.StringFlag{Name: "description"},
					&cli.StringFlag{Name: "image", Usage: "path to an image file"},
				},
				Action: func(c *cli.Context) error {
					e, err := open(c, true)
					if err != nil {
						return err
					}
					price, err := decimal.NewFromString(c.String("price"))
					if err != nil {
						return fmt.Errorf("%w: price %q", domain.ErrInvalidInput, c.String("price"))
					}
					img, done, err := imageFile(c.String("image"))
					if err != nil {
						return err
					}
					defer done()
					p, err := e.api.SaveProduct(c.Context, domain.Product{
						ID:          c.Int64("id"),
						Name:        c.String("name"),
						Price:       price,
						SellUnit:    domain.SellUnit(c.String("unit")),
						Category:    domain.Category{ID: c.Int64("category")},
						Description: c.String("description"),
					}, img)
					if err != nil {
						return err
					}
					return printJSON(c, p)
				},
			},
			{
				Name:  "delete",
				Flags: []cli.Flag{&cli.Int64Flag{Name: "id", Required: true}},
				Action: func(c *cli.Context) error {
					e, err := open(c, true)
					if err != nil {
						return err
					}
					ack, err := e.api.DeleteProduct(c.Context, c.Int64("id"))
					if err != nil {
						return err
					}
					return printJSON(c, ack)
				},
			},
		},
	}
}

func filterFrom(c *cli.Context) (domain.ProductFilter, error) {
	var f domain.ProductFilter
	if v := c.String("name"); v != "" {
		f.Name = &v
	}
	if v := c.String("location"); v != "" {
		f.Location = &v
	}
	if id := c.Int64("category"); id != 0 {
		f.Category = &domain.Category{ID: id}
	}
	for flag, dst := range map[string]**decimal.Decimal{"min": &f.MinPrice, "max": &f.MaxPrice} {
		raw := c.String(flag)
		if raw == "" {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return f, fmt.Errorf("%w: --%s %q", domain.ErrInvalidInput, flag, raw)
		}
		*dst = &d
	}
	return f, nil
}
