package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/creeeasy/online-store-sub000/pkg/client"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serverURL string

var rootCmd = &cobra.Command{
	Use:   "adminctl",
	Short: "Administer the store from the command line",
	Long: `adminctl talks to the store server with the same client the admin
dashboard uses: authenticated requests, cached reads and bulk operations.

Log in first with 'adminctl login', then manage products and order
inquiries.`,
	SilenceUsage: true,
}

// app bundles the client services a command needs. Credentials persist in
// the user's home directory so sessions survive between invocations.
type app struct {
	session   *client.Session
	products  *client.Products
	inquiries *client.Inquiries
}

func newApp() (*app, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}
	credsPath := filepath.Join(home, ".adminctl", "credentials.json")

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	c := client.New(strings.TrimRight(serverURL, "/")+"/api", client.NewFileCredentialStore(credsPath), logger)
	cache := client.NewCache()
	notify := client.NopNotifier{}

	return &app{
		session:   client.NewSession(c),
		products:  client.NewProducts(c, cache, notify),
		inquiries: client.NewInquiries(c, cache, notify),
	}, nil
}

func main() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", defaultServer(), "store server base URL")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(productsCmd)
	rootCmd.AddCommand(inquiriesCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func defaultServer() string {
	if v := os.Getenv("ADMINCTL_SERVER"); v != "" {
		return v
	}
	return "http://localhost:8080"
}
