package main

import (
	"fmt"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"craftmart/internal/cart"
	"craftmart/internal/domain"
	"craftmart/internal/order"
	"craftmart/internal/status"
)

func cartCommand() *cli.Command {
	seller := func() cli.Flag {
		return &cli.Int64Flag{Name: "seller", Required: true, Usage: "storefront the cart belongs to"}
	}
	return &cli.Command{
		Name:  "cart",
		Usage: "per storefront cart kept between runs",
		Subcommands: []*cli.Command{
			{
				Name:  "add",
				Usage: "add a product or replace its quantity",
				Flags: []cli.Flag{
					seller(),
					&cli.Int64Flag{Name: "product", Required: true},
					&cli.StringFlag{Name: "qty", Value: "1"},
				},
				Action: func(c *cli.Context) error {
					return withCart(c, func(e *env, ct *cart.Cart) error {
						p, err := e.product(c, c.Int64("seller"), c.Int64("product"))
						if err != nil {
							return err
						}
						return ct.AddOrUpdate(p, cart.ParseQuantity(c.String("qty")))
					})
				},
			},
			{
				Name:  "remove",
				Flags: []cli.Flag{seller(), &cli.Int64Flag{Name: "product", Required: true}},
				Action: func(c *cli.Context) error {
					return withCart(c, func(_ *env, ct *cart.Cart) error {
						ct.Remove(c.Int64("product"))
						return nil
					})
				},
			},
			{
				Name:  "clear",
				Flags: []cli.Flag{seller()},
				Action: func(c *cli.Context) error {
					return withCart(c, func(_ *env, ct *cart.Cart) error {
						ct.Clear()
						return nil
					})
				},
			},
			{
				Name:  "show",
				Flags: []cli.Flag{seller()},
				Action: func(c *cli.Context) error {
					return withCart(c, func(*env, *cart.Cart) error { return nil })
				},
			},
		},
	}
}

type cartView struct {
	SellerID int64      `json:"sellerId"`
	Entries  []cartLine `json:"entries"`
	Count    int        `json:"count"`
	Total    string     `json:"total"`
}

type cartLine struct {
	ProductID int64  `json:"productId"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	LineTotal string `json:"lineTotal"`
}

// withCart loads the cart, applies fn, saves and prints it
func withCart(c *cli.Context, fn func(*env, *cart.Cart) error) error {
	e, err := open(c, true)
	if err != nil {
		return err
	}
	store, err := e.carts(c)
	if err != nil {
		return err
	}
	key, err := e.cartKey(c.Int64("seller"))
	if err != nil {
		return err
	}
	ct, err := e.loadCart(c, store, key)
	if err != nil {
		return err
	}
	if err := fn(e, ct); err != nil {
		return err
	}
	if err := store.Save(c.Context, key, ct); err != nil {
		return err
	}
	return printJSON(c, viewOf(ct))
}

func viewOf(ct *cart.Cart) cartView {
	v := cartView{SellerID: ct.SellerID(), Count: ct.Count(), Total: ct.Total().String(), Entries: []cartLine{}}
	for _, en := range ct.Entries() {
		v.Entries = append(v.Entries, cartLine{
			ProductID: en.Product.ID,
			Name:      en.Product.Name,
			Quantity:  en.Quantity,
			LineTotal: en.LineTotal().String(),
		})
	}
	return v
}

func checkoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "checkout",
		Usage: "place an order for the whole cart of a storefront",
		Flags: append([]cli.Flag{&cli.Int64Flag{Name: "seller", Required: true}}, addressFlags()...),
		Action: func(c *cli.Context) error {
			e, err := open(c, true)
			if err != nil {
				return err
			}
			store, err := e.carts(c)
			if err != nil {
				return err
			}
			key, err := e.cartKey(c.Int64("seller"))
			if err != nil {
				return err
			}
			ct, err := e.loadCart(c, store, key)
			if err != nil {
				return err
			}
			placed, err := order.NewCheckout(nil, e.api, e.sess, e.logger).PlaceCart(c.Context, ct, addressFrom(c))
			if err != nil {
				// the stored cart is untouched so the buyer can retry
				return err
			}
			if err := store.Save(c.Context, key, ct); err != nil {
				e.logger.Warn("order placed but cart not cleared", zap.Int64("order", placed.ID), zap.Error(err))
			}
			return printJSON(c, placed)
		},
	}
}

func buyCommand() *cli.Command {
	return &cli.Command{
		Name:  "buy",
		Usage: "order a single product right away",
		Flags: append([]cli.Flag{
			&cli.Int64Flag{Name: "seller", Required: true},
			&cli.Int64Flag{Name: "product", Required: true},
			&cli.StringFlag{Name: "qty", Value: "1"},
		}, addressFlags()...),
		Action: func(c *cli.Context) error {
			e, err := open(c, true)
			if err != nil {
				return err
			}
			p, err := e.product(c, c.Int64("seller"), c.Int64("product"))
			if err != nil {
				return err
			}
			placed, err := order.NewCheckout(nil, e.api, e.sess, e.logger).
				BuyNow(c.Context, p, cart.ParseQuantity(c.String("qty")), addressFrom(c))
			if err != nil {
				return err
			}
			return printJSON(c, placed)
		},
	}
}

func customOrderCommand() *cli.Command {
	return &cli.Command{
		Name:  "custom-order",
		Usage: "ask a seller for a bespoke item",
		Flags: append([]cli.Flag{
			&cli.Int64Flag{Name: "seller", Required: true},
			&cli.StringFlag{Name: "name", Required: true},
			&cli.StringFlag{Name: "description", Required: true},
			&cli.IntFlag{Name: "qty", Value: 1},
			&cli.StringFlag{Name: "image", Usage: "reference image"},
		}, addressFlags()...),
		Action: func(c *cli.Context) error {
			e, err := open(c, true)
			if err != nil {
				return err
			}
			seller, err := e.api.User(c.Context, c.Int64("seller"))
			if err != nil {
				return err
			}
			img, done, err := imageFile(c.String("image"))
			if err != nil {
				return err
			}
			defer done()
			ack, err := order.NewCheckout(nil, e.api, e.sess, e.logger).PlaceCustom(c.Context, order.CustomRequest{
				Seller:      *seller,
				Name:        c.String("name"),
				Description: c.String("description"),
				Quantity:    c.Int("qty"),
				Image:       img,
				Address:     addressFrom(c),
			})
			if err != nil {
				return err
			}
			return printJSON(c, ack)
		},
	}
}

func ordersCommand() *cli.Command {
	custom := func() cli.Flag {
		return &cli.BoolFlag{Name: "custom", Usage: "custom orders instead of catalog orders"}
	}
	return &cli.Command{
		Name:  "orders",
		Usage: "list orders and move them through their lifecycle",
		Subcommands: []*cli.Command{
			{
				Name: "list",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "as", Value: string(domain.PartyBuyer), Usage: "buyer or seller"},
					custom(),
				},
				Action: func(c *cli.Context) error {
					e, err := open(c, true)
					if err != nil {
						return err
					}
					t := status.NewTracker(e.api, e.sess, e.logger)
					party := domain.Party(c.String("as"))
					if c.Bool("custom") {
						list, err := t.CustomOrders(c.Context, party)
						if err != nil {
							return err
						}
						return printJSON(c, list)
					}
					list, err := t.Orders(c.Context, party)
					if err != nil {
						return err
					}
					return printJSON(c, list)
				},
			},
			{
				Name:  "transition",
				Usage: "request a status change, e.g. --id 7 --to confirmed",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "id", Required: true},
					&cli.StringFlag{Name: "to", Required: true},
					custom(),
				},
				Action: func(c *cli.Context) error {
					e, err := open(c, true)
					if err != nil {
						return err
					}
					to, err := domain.ParseStatus(c.String("to"))
					if err != nil {
						return err
					}
					t := status.NewTracker(e.api, e.sess, e.logger)
					if c.Bool("custom") {
						return transitionCustom(c, t, c.Int64("id"), to)
					}
					return transitionOrder(c, t, c.Int64("id"), to)
				},
			},
		},
	}
}

// the tracker needs the current status, so the order is looked up on both sides
func transitionOrder(c *cli.Context, t *status.Tracker, id int64, to domain.Status) error {
	for _, party := range []domain.Party{domain.PartySeller, domain.PartyBuyer} {
		list, err := t.Orders(c.Context, party)
		if err != nil {
			return err
		}
		for _, o := range list {
			if o.ID != id {
				continue
			}
			out, err := t.TransitionOrder(c.Context, o, to)
			if err != nil {
				return err
			}
			return printJSON(c, out.Ack)
		}
	}
	return fmt.Errorf("order %d: %w", id, domain.ErrNotFound)
}

func transitionCustom(c *cli.Context, t *status.Tracker, id int64, to domain.Status) error {
	for _, party := range []domain.Party{domain.PartySeller, domain.PartyBuyer} {
		list, err := t.CustomOrders(c.Context, party)
		if err != nil {
			return err
		}
		for _, o := range list {
			if o.ID != id {
				continue
			}
			out, err := t.TransitionCustomOrder(c.Context, o, to)
			if err != nil {
				return err
			}
			return printJSON(c, out.Ack)
		}
	}
	return fmt.Errorf("custom order %d: %w", id, domain.ErrNotFound)
}
