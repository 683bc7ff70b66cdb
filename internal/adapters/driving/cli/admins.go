package cli

import (
	"github.com/spf13/cobra"

	"github.com/halcyonops/spoadmin/internal/core/ports/driven"
	"github.com/halcyonops/spoadmin/internal/core/services"
	"github.com/halcyonops/spoadmin/internal/report"
	"github.com/halcyonops/spoadmin/internal/sitelist"
)

var adminsCmd = &cobra.Command{
	Use:   "admins",
	Short: "Manage and report site collection administrators",
}

var adminsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a principal as site collection administrator",
	Long: `Add a principal as site collection administrator on every site in the
working set. Sites where the principal already holds the role are skipped
without a remote mutation.

Examples:
  # Add across all collaboration sites in the tenant
  spoadmin admins add --login admin@contoso.com --all

  # Add on the sites listed in a CSV file
  spoadmin admins add --login admin@contoso.com --sites sites.csv`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runAdmins(cmd, false)
	},
}

var adminsRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove a principal from site collection administrators",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runAdmins(cmd, true)
	},
}

var adminsReportCmd = &cobra.Command{
	Use:   "report",
	Short: "Report site collection administrators with group expansion",
	Long: `Produce an administrator inventory: one CSV row per site. Individual
users are listed directly; owner-style SharePoint groups are resolved with
fallback to the site's associated owners group; directory-backed groups
are expanded into owners and members via Microsoft Graph.`,
	RunE: runAdminsReport,
}

// Flags for admins commands.
var (
	adminsLogin     string
	adminsSitesFile string
	adminsAll       bool
	adminsDryRun    bool
	adminsOut       string
)

func init() {
	for _, cmd := range []*cobra.Command{adminsAddCmd, adminsRemoveCmd, adminsReportCmd} {
		cmd.Flags().StringVar(&adminsSitesFile, "sites", "", "CSV file listing target sites")
		cmd.Flags().BoolVar(&adminsAll, "all", false, "target every collaboration site in the tenant")
	}
	adminsAddCmd.Flags().StringVar(&adminsLogin, "login", "", "login name (UPN) of the principal")
	adminsRemoveCmd.Flags().StringVar(&adminsLogin, "login", "", "login name (UPN) of the principal")
	adminsAddCmd.Flags().BoolVar(&adminsDryRun, "dry-run", false, "evaluate membership but issue no changes")
	adminsRemoveCmd.Flags().BoolVar(&adminsDryRun, "dry-run", false, "evaluate membership but issue no changes")
	adminsReportCmd.Flags().StringVar(&adminsOut, "out", "admins-report.csv", "report file path")

	adminsCmd.AddCommand(adminsAddCmd)
	adminsCmd.AddCommand(adminsRemoveCmd)
	adminsCmd.AddCommand(adminsReportCmd)
	rootCmd.AddCommand(adminsCmd)
}

func runAdmins(cmd *cobra.Command, remove bool) error {
	rt, err := bootstrap()
	if err != nil {
		return err
	}
	defer rt.release()

	filter := sitelist.Filter{ExcludePersonal: true}
	sites, err := buildIterator(cmd, rt, filter, adminsSitesFile, adminsAll)
	if err != nil {
		return err
	}

	svc := services.NewAdminService(rt.dir, rt.inv, rt.log)
	runReport, err := svc.Run(cmd.Context(), sites, services.AdminOptions{
		LoginName: adminsLogin,
		Remove:    remove,
		DryRun:    adminsDryRun,
	})
	if err != nil {
		return err
	}

	printSummary(cmd, runReport)
	return nil
}

func runAdminsReport(cmd *cobra.Command, _ []string) error {
	rt, err := bootstrap()
	if err != nil {
		return err
	}
	defer rt.release()

	filter := sitelist.Filter{ExcludePersonal: true}
	sites, err := buildIterator(cmd, rt, filter, adminsSitesFile, adminsAll)
	if err != nil {
		return err
	}

	var sink driven.ReportSink = report.Discard{}
	if adminsOut != "" {
		fileSink, err := report.NewFileSink(adminsOut, services.ReportHeader)
		if err != nil {
			return err
		}
		sink = fileSink
	}
	defer sink.Close()

	svc := services.NewReportService(rt.dir, rt.groups, rt.inv, rt.cfg.Report.IgnoreGroups, rt.log)
	runReport, err := svc.Run(cmd.Context(), sites, sink)
	if err != nil {
		return err
	}

	printSummary(cmd, runReport)
	if adminsOut != "" {
		cmd.Printf("\nReport written to %s\n", adminsOut)
	}
	return nil
}
