package main

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"

	"github.com/jrsteele09/canvas-dashboard/internal/config"
	"github.com/jrsteele09/canvas-dashboard/lms"
	"github.com/jrsteele09/canvas-dashboard/roles"
	"github.com/spf13/cobra"
)

var (
	whoisEmail string
	whoisVia   string
)

var whoisCmd = &cobra.Command{
	Use:   "whois",
	Short: "Resolve an email to a Canvas user and dashboard role",
	Example: `  canvas-dashboard whois --email teacher@school.edu
  canvas-dashboard whois --email teacher@school.edu --via http://localhost:8080`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := config.New()
		setupLogging(c)

		// Through a running dashboard the proxy supplies the credential
		var client *lms.Client
		if whoisVia != "" {
			root := strings.TrimRight(whoisVia, "/") + c.GetProxyPrefix()
			client = lms.NewClient(root, &http.Client{}, lms.WithMaxPages(c.GetLMSMaxPages()))
		} else {
			client = lms.NewClient(lms.APIRoot(c.GetLMSBaseURL()), lms.NewHTTPClient(c.GetLMSToken(), nil), lms.WithMaxPages(c.GetLMSMaxPages()))
		}

		identity, err := roles.NewResolver(client, c.GetLMSAccountID()).Resolve(cmd.Context(), whoisEmail)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			roles.Identity
			Dashboard string `json:"dashboard"`
		}{identity, identity.Role.Dashboard()})
	},
}

func init() {
	whoisCmd.Flags().StringVar(&whoisEmail, "email", "", "login email to resolve")
	whoisCmd.Flags().StringVar(&whoisVia, "via", "", "base URL of a running dashboard whose proxy should be used")
	_ = whoisCmd.MarkFlagRequired("email")
}
