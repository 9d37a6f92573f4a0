package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/creeeasy/online-store-sub000/pkg/models"
	"github.com/spf13/cobra"
)

var productListFlags struct {
	page     int
	limit    int
	category string
	onSale   bool
	query    string
}

var productBulkFlags struct {
	ids           []string
	discount      int
	clearDiscount bool
	offersActive  bool
}

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "Manage the product catalog",
}

var productsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List products",
	RunE:  runProductsList,
}

var productsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show catalog statistics",
	RunE:  runProductsStats,
}

var productsBulkCmd = &cobra.Command{
	Use:   "bulk",
	Short: "Apply a discount or offer toggle to many products at once",
	RunE:  runProductsBulk,
}

func init() {
	productsListCmd.Flags().IntVar(&productListFlags.page, "page", 1, "page number")
	productsListCmd.Flags().IntVar(&productListFlags.limit, "limit", 20, "items per page")
	productsListCmd.Flags().StringVar(&productListFlags.category, "category", "", "filter by category")
	productsListCmd.Flags().BoolVar(&productListFlags.onSale, "on-sale", false, "only discounted products")
	productsListCmd.Flags().StringVarP(&productListFlags.query, "query", "q", "", "search by name")

	productsBulkCmd.Flags().StringSliceVar(&productBulkFlags.ids, "ids", nil, "product ids (comma separated)")
	productsBulkCmd.Flags().IntVar(&productBulkFlags.discount, "discount", 0, "discount percent to apply (1-99)")
	productsBulkCmd.Flags().BoolVar(&productBulkFlags.clearDiscount, "clear-discount", false, "remove existing discounts")
	productsBulkCmd.Flags().BoolVar(&productBulkFlags.offersActive, "offers-active", false, "set offer visibility")
	productsBulkCmd.MarkFlagRequired("ids")

	productsCmd.AddCommand(productsListCmd)
	productsCmd.AddCommand(productsStatsCmd)
	productsCmd.AddCommand(productsBulkCmd)
}

func runProductsList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	filter := models.ProductFilter{
		Page:     productListFlags.page,
		Limit:    productListFlags.limit,
		Category: productListFlags.category,
		Query:    productListFlags.query,
	}
	if cmd.Flags().Changed("on-sale") {
		filter.OnSale = &productListFlags.onSale
	}

	page, err := a.products.List(cmd.Context(), filter)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPRICE\tSALE\tOFFERS")
	for _, p := range page.Items {
		sale := "-"
		if p.OnSale() {
			sale = p.DisplayPrice().String()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", p.ID, p.Name, p.Price.String(), sale, len(p.Offers))
	}
	w.Flush()

	if page.Pagination != nil {
		fmt.Printf("\nPage %d of %d (%d products)\n",
			page.Pagination.CurrentPage, page.Pagination.TotalPages, page.Pagination.TotalItems)
	}
	return nil
}

func runProductsStats(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	stats, err := a.products.Stats(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("Total products: %d\n", stats.TotalProducts)
	fmt.Printf("On sale:        %d\n", stats.OnSale)
	fmt.Printf("With offers:    %d\n", stats.WithOffers)
	fmt.Printf("Average price:  %s\n", stats.AveragePrice.StringFixed(2))
	return nil
}

func runProductsBulk(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	update := models.ProductBulkUpdate{
		IDs:           productBulkFlags.ids,
		ClearDiscount: productBulkFlags.clearDiscount,
	}
	if cmd.Flags().Changed("discount") {
		update.DiscountPercent = &productBulkFlags.discount
	}
	if cmd.Flags().Changed("offers-active") {
		update.OffersActive = &productBulkFlags.offersActive
	}
	if update.DiscountPercent == nil && !update.ClearDiscount && update.OffersActive == nil {
		return fmt.Errorf("nothing to update: pass --discount, --clear-discount or --offers-active")
	}

	updated, err := a.products.BulkUpdate(cmd.Context(), update)
	if err != nil {
		return err
	}

	fmt.Printf("Updated %d products\n", updated)
	return nil
}
