package main

import (
	"github.com/jrsteele09/go-account-api/authrequests"
	"github.com/jrsteele09/go-account-api/internal/config"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var purgeCmd = &cobra.Command{
	Use:   "purge-auth-requests",
	Short: "Delete sign-in handshakes older than AUTH_REQUEST_TTL",
	Long: `Deletes auth requests that were never redeemed. Run it periodically from
a scheduler when using the postgres store; redis expires them by itself.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.GetStoreDriver() == config.StoreDriverMemory {
			log.Info().Msg("in-memory store: nothing to purge")
			return nil
		}

		stores, err := openStores(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer stores.Close()

		store := authrequests.NewStore(stores.authRequests, cfg.GetAuthRequestTTL(), cfg.GetRandomTokenLength())
		deleted, err := store.PurgeExpired(cmd.Context())
		if err != nil {
			return err
		}
		log.Info().Int64("deleted", deleted).Dur("ttl", store.TTL()).Msg("purged expired auth requests")
		return nil
	},
}
