package main

import (
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"craftmart/internal/cart"
	"craftmart/internal/client"
	"craftmart/internal/domain"
	"craftmart/internal/logging"
	"craftmart/internal/session"
)

// env is what every command works with
type env struct {
	api    *client.Client
	sess   *session.Session
	logger *zap.Logger
}

// open builds the client and session. With login=true a valid token whose
// profile can be loaded is required.
func open(c *cli.Context, login bool) (*env, error) {
	logger := logging.NewCLI(c.Bool("verbose"))
	sess := session.Anonymous()
	api, err := client.New(c.String("api"),
		client.WithTokenSource(sess),
		client.WithLogger(logger),
		client.WithTimeout(c.Duration("timeout")))
	if err != nil {
		return nil, err
	}
	e := &env{api: api, sess: sess, logger: logger}

	tok := c.String("token")
	if tok == "" {
		if login {
			return nil, &domain.OpError{Op: "marketctl", Message: "set MARKET_TOKEN or --token", Err: domain.ErrUnauthenticated}
		}
		return e, nil
	}
	sess.SetToken(tok)
	if !login {
		return e, nil
	}
	me, err := api.UserInfo(c.Context)
	if err != nil {
		return nil, err
	}
	sess.Set(tok, me)
	return e, nil
}

// carts picks Redis when configured, files otherwise
func (e *env) carts(c *cli.Context) (cart.Store, error) {
	if url := c.String("redis"); url != "" {
		return cart.NewRedisStoreFromURL(c.Context, url, c.Duration("cart-ttl"))
	}
	return cart.NewFileStore(c.String("cart-dir")), nil
}

// loadCart reports stored entries that could not be restored
func (e *env) loadCart(c *cli.Context, store cart.Store, key cart.Key) (*cart.Cart, error) {
	ct, err := store.Load(c.Context, key)
	if err != nil {
		return nil, err
	}
	if n := ct.Dropped(); n > 0 {
		e.logger.Warn("stored cart had invalid entries, they were removed",
			zap.Stringer("cart", key), zap.Int("dropped", n))
		fmt.Fprintf(c.App.ErrWriter, "warning: %d cart entries were no longer valid and were removed\n", n)
	}
	return ct, nil
}

func (e *env) cartKey(sellerID int64) (cart.Key, error) {
	buyerID, err := e.sess.UserID()
	if err != nil {
		return cart.Key{}, err
	}
	return cart.Key{BuyerID: buyerID, SellerID: sellerID}, nil
}

// product finds a storefront product; there is no single-product endpoint
func (e *env) product(c *cli.Context, sellerID, productID int64) (domain.Product, error) {
	list, err := e.api.SellerProducts(c.Context, sellerID)
	if err != nil {
		return domain.Product{}, err
	}
	for _, p := range list {
		if p.ID == productID {
			return p, nil
		}
	}
	return domain.Product{}, &domain.OpError{Op: "marketctl.product", ID: productID, Err: domain.ErrNotFound}
}

func printJSON(c *cli.Context, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, string(b))
	return err
}

func addressFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "locality"},
		&cli.StringFlag{Name: "city"},
		&cli.StringFlag{Name: "district"},
		&cli.StringFlag{Name: "state"},
		&cli.StringFlag{Name: "pincode"},
	}
}

// addressFrom returns nil when no address flag was given
func addressFrom(c *cli.Context) *domain.Address {
	a := domain.Address{
		Locality: c.String("locality"),
		City:     c.String("city"),
		District: c.String("district"),
		State:    c.String("state"),
		Pincode:  c.String("pincode"),
	}
	if a.Blank() {
		return nil
	}
	return &a
}

// imageFile opens an optional image; the caller closes it
func imageFile(path string) (domain.ImagePayload, func(), error) {
	if path == "" {
		return nil, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	ctype := mime.TypeByExtension(filepath.Ext(path))
	if ctype == "" {
		ctype = "application/octet-stream"
	}
	return domain.MultipartFile{Filename: filepath.Base(path), ContentType: ctype, Reader: f},
		func() { _ = f.Close() }, nil
}
