package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/creeeasy/online-store-sub000/pkg/client"
	"github.com/creeeasy/online-store-sub000/pkg/models"
	"github.com/spf13/cobra"
)

var inquiryListFlags struct {
	page   int
	limit  int
	status string
	phone  string
	name   string
}

var inquiryBulkFlags struct {
	ids    []string
	status string
}

var inquiryExportFlags struct {
	ids []string
	out string
}

var inquiriesCmd = &cobra.Command{
	Use:   "inquiries",
	Short: "Manage order inquiries",
}

var inquiriesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List order inquiries",
	RunE:  runInquiriesList,
}

var inquiriesShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one inquiry in full",
	Args:  cobra.ExactArgs(1),
	RunE:  runInquiriesShow,
}

var inquiriesStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show inquiry statistics",
	RunE:  runInquiriesStats,
}

var inquiriesSetStatusCmd = &cobra.Command{
	Use:   "set-status <id> <status>",
	Short: "Move one inquiry to a new status",
	Args:  cobra.ExactArgs(2),
	RunE:  runInquiriesSetStatus,
}

var inquiriesBulkStatusCmd = &cobra.Command{
	Use:   "bulk-status",
	Short: "Move a selection of inquiries to one status",
	RunE:  runInquiriesBulkStatus,
}

var inquiriesBulkDeleteCmd = &cobra.Command{
	Use:   "bulk-delete",
	Short: "Delete a selection of inquiries",
	RunE:  runInquiriesBulkDelete,
}

var inquiriesExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export selected inquiries to CSV",
	RunE:  runInquiriesExport,
}

func init() {
	inquiriesListCmd.Flags().IntVar(&inquiryListFlags.page, "page", 1, "page number")
	inquiriesListCmd.Flags().IntVar(&inquiryListFlags.limit, "limit", 20, "items per page")
	inquiriesListCmd.Flags().StringVar(&inquiryListFlags.status, "status", "", "filter by status")
	inquiriesListCmd.Flags().StringVar(&inquiryListFlags.phone, "phone", "", "filter by customer phone")
	inquiriesListCmd.Flags().StringVar(&inquiryListFlags.name, "name", "", "filter by customer name")

	inquiriesBulkStatusCmd.Flags().StringSliceVar(&inquiryBulkFlags.ids, "ids", nil, "inquiry ids (comma separated)")
	inquiriesBulkStatusCmd.Flags().StringVar(&inquiryBulkFlags.status, "status", "", "target status")
	inquiriesBulkStatusCmd.MarkFlagRequired("ids")
	inquiriesBulkStatusCmd.MarkFlagRequired("status")

	inquiriesBulkDeleteCmd.Flags().StringSliceVar(&inquiryBulkFlags.ids, "ids", nil, "inquiry ids (comma separated)")
	inquiriesBulkDeleteCmd.MarkFlagRequired("ids")

	inquiriesExportCmd.Flags().StringSliceVar(&inquiryExportFlags.ids, "ids", nil, "inquiry ids (comma separated)")
	inquiriesExportCmd.Flags().StringVar(&inquiryExportFlags.out, "out", "", "output file (default order-inquiries-<date>.csv)")
	inquiriesExportCmd.MarkFlagRequired("ids")

	inquiriesCmd.AddCommand(inquiriesListCmd)
	inquiriesCmd.AddCommand(inquiriesShowCmd)
	inquiriesCmd.AddCommand(inquiriesStatsCmd)
	inquiriesCmd.AddCommand(inquiriesSetStatusCmd)
	inquiriesCmd.AddCommand(inquiriesBulkStatusCmd)
	inquiriesCmd.AddCommand(inquiriesBulkDeleteCmd)
	inquiriesCmd.AddCommand(inquiriesExportCmd)
}

func runInquiriesList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	filter := models.InquiryFilter{
		Page:  inquiryListFlags.page,
		Limit: inquiryListFlags.limit,
		Phone: inquiryListFlags.phone,
		Name:  inquiryListFlags.name,
	}
	if inquiryListFlags.status != "" {
		status := models.InquiryStatus(inquiryListFlags.status)
		if !status.Valid() {
			return fmt.Errorf("unknown status %q", inquiryListFlags.status)
		}
		filter.Status = status
	}

	page, err := a.inquiries.List(cmd.Context(), filter)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRODUCT\tCUSTOMER\tPHONE\tSTATUS\tCREATED")
	for _, q := range page.Items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			q.ID, q.ProductName, q.Customer.Name, q.Customer.Phone,
			q.Status, q.CreatedAt.Format("2006-01-02 15:04"))
	}
	w.Flush()

	if page.Pagination != nil {
		fmt.Printf("\nPage %d of %d (%d inquiries)\n",
			page.Pagination.CurrentPage, page.Pagination.TotalPages, page.Pagination.TotalItems)
	}
	return nil
}

func runInquiriesShow(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	q, err := a.inquiries.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	fmt.Printf("ID:        %s\n", q.ID)
	fmt.Printf("Product:   %s (%s)\n", q.ProductName, q.ProductID)
	fmt.Printf("Customer:  %s\n", q.Customer.Name)
	fmt.Printf("Phone:     %s\n", q.Customer.Phone)
	fmt.Printf("Reference: %s\n", q.Customer.Reference)
	for _, f := range q.Customer.Extra {
		fmt.Printf("  %s: %s\n", f.Key, f.Value)
	}
	if q.Quantity != nil {
		fmt.Printf("Quantity:  %d\n", *q.Quantity)
	}
	for k, v := range q.SelectedVariants {
		fmt.Printf("  %s: %s\n", k, v)
	}
	if q.TotalPrice != nil {
		fmt.Printf("Total:     %s\n", q.TotalPrice.StringFixed(2))
	}
	fmt.Printf("Status:    %s\n", q.Status)
	if q.Notes != "" {
		fmt.Printf("Notes:     %s\n", q.Notes)
	}
	fmt.Printf("Created:   %s\n", q.CreatedAt.Format(time.RFC3339))
	return nil
}

func runInquiriesStats(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	stats, err := a.inquiries.Stats(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("Total inquiries: %d\n", stats.Total)
	fmt.Printf("Last 7 days:     %d\n", stats.LastSevenDays)
	for _, status := range []models.InquiryStatus{
		models.InquiryPending, models.InquiryContacted,
		models.InquiryConverted, models.InquiryCancelled,
	} {
		fmt.Printf("  %-10s %d\n", status, stats.ByStatus[status])
	}
	return nil
}

func runInquiriesSetStatus(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	status := models.InquiryStatus(args[1])
	if !status.Valid() {
		return fmt.Errorf("unknown status %q", args[1])
	}

	q, err := a.inquiries.UpdateStatus(cmd.Context(), args[0], models.InquiryStatusUpdate{Status: status})
	if err != nil {
		return err
	}

	fmt.Printf("Inquiry %s is now %s\n", q.ID, q.Status)
	return nil
}

func runInquiriesBulkStatus(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	status := models.InquiryStatus(inquiryBulkFlags.status)
	if !status.Valid() {
		return fmt.Errorf("unknown status %q", inquiryBulkFlags.status)
	}

	updated, err := a.inquiries.BulkUpdateStatus(cmd.Context(), models.InquiryBulkStatusUpdate{
		IDs:    inquiryBulkFlags.ids,
		Status: status,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Updated %d inquiries\n", updated)
	return nil
}

func runInquiriesBulkDelete(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	deleted, err := a.inquiries.BulkDelete(cmd.Context(), inquiryBulkFlags.ids)
	if err != nil {
		return err
	}

	fmt.Printf("Deleted %d inquiries\n", deleted)
	return nil
}

func runInquiriesExport(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	out := inquiryExportFlags.out
	if out == "" {
		out = client.ExportFilename(time.Now())
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()

	exported, err := a.inquiries.ExportCSV(cmd.Context(), inquiryExportFlags.ids, f)
	if err != nil {
		return err
	}

	fmt.Printf("Exported %d of %d inquiries to %s\n", exported, len(inquiryExportFlags.ids), out)
	return nil
}
