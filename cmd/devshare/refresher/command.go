// Package refresher holds the proactive token refresh daemon command.
package refresher

import (
	"github.com/spf13/cobra"

	"github.com/devshare/devshare-cli/internal/business"
	"github.com/devshare/devshare-cli/internal/cmdutils"
)

func Cmd() *cobra.Command {
	return cmdutils.CobraCommand(
		"refresher",
		"Token refresh daemon",
		"Keeps the stored access token fresh by renewing it ahead of its expiry, until interrupted.",
		business.RefresherMain,
	)
}
