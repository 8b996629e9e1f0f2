// Command marketctl is a terminal client for the craftmart marketplace:
// browsing, a persisted cart, checkout and order status management.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"craftmart/internal/domain"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, domain.UserMessage(err))
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:   "marketctl",
		Usage:  "handmade goods marketplace client",
		Writer: out,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "api", Value: "http://localhost:9091", EnvVars: []string{"API_URL"}, Usage: "backend base URL"},
			&cli.StringFlag{Name: "token", EnvVars: []string{"MARKET_TOKEN"}, Usage: "bearer token from login"},
			&cli.DurationFlag{Name: "timeout", Value: 15 * time.Second, EnvVars: []string{"REQUEST_TIMEOUT"}},
			&cli.StringFlag{Name: "redis", EnvVars: []string{"REDIS_URL"}, Usage: "keep carts in Redis instead of files"},
			&cli.StringFlag{Name: "cart-dir", Value: ".craftmart/carts", EnvVars: []string{"CART_DIR"}},
			&cli.DurationFlag{Name: "cart-ttl", Value: 7 * 24 * time.Hour, EnvVars: []string{"CART_TTL"}},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}},
		},
		// errors are printed once by main
		ExitErrHandler: func(*cli.Context, error) {},
		Commands: []*cli.Command{
			loginCommand(),
			registerCommand(),
			whoamiCommand(),
			productsCommand(),
			cartCommand(),
			checkoutCommand(),
			buyCommand(),
			customOrderCommand(),
			ordersCommand(),
		},
	}
}
