package main

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/arnavshah/carehome-shifts-api/pkg/auth"
	"github.com/arnavshah/carehome-shifts-api/pkg/config"
	"github.com/arnavshah/carehome-shifts-api/pkg/models"
	"github.com/arnavshah/carehome-shifts-api/pkg/shifts"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "keygen",
		Short:        "Key and token tooling for the care-home shifts API",
		Long:         `Generates carer check-in keys, signs check-in proofs and mints access tokens for testing.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(keypairCmd())
	rootCmd.AddCommand(signNonceCmd())
	rootCmd.AddCommand(signCarerCmd())
	rootCmd.AddCommand(tokenCmd())
	return rootCmd
}

// keypairCmd prints a fresh ed25519 key pair for challenge check-in
func keypairCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keypair",
		Short: "Generate an ed25519 key pair for a carer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pub, priv, err := ed25519.GenerateKey(rand.Reader)
			if err != nil {
				return fmt.Errorf("generate key: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "public:  %s\n", base64.StdEncoding.EncodeToString(pub))
			fmt.Fprintf(out, "seed:    %s\n", base64.StdEncoding.EncodeToString(priv.Seed()))
			return nil
		},
	}
}

// signNonceCmd answers a check-in challenge nonce with the carer's seed
func signNonceCmd() *cobra.Command {
	var seed string
	cmd := &cobra.Command{
		Use:   "sign-nonce <nonce>",
		Short: "Sign a check-in challenge nonce",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := base64.StdEncoding.DecodeString(seed)
			if err != nil || len(raw) != ed25519.SeedSize {
				return fmt.Errorf("seed must be a base64 %d-byte ed25519 seed", ed25519.SeedSize)
			}
			sig := ed25519.Sign(ed25519.NewKeyFromSeed(raw), []byte(args[0]))
			fmt.Fprintln(cmd.OutOrStdout(), base64.StdEncoding.EncodeToString(sig))
			return nil
		},
	}
	cmd.Flags().StringVar(&seed, "seed", "", "base64 ed25519 seed from the keypair command")
	_ = cmd.MarkFlagRequired("seed")
	return cmd
}

// signCarerCmd produces the legacy QR proof for a carer id from a shift's PEM key
func signCarerCmd() *cobra.Command {
	var keyFile string
	cmd := &cobra.Command{
		Use:   "sign-carer <carerId>",
		Short: "Sign a carer id with a shift's PKCS1 private key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pemBytes, err := os.ReadFile(keyFile)
			if err != nil {
				return fmt.Errorf("read key file: %w", err)
			}
			sig, err := shifts.SignCarerID(string(pemBytes), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), sig)
			return nil
		},
	}
	cmd.Flags().StringVar(&keyFile, "key-file", "", "path to the PKCS1 PEM private key")
	_ = cmd.MarkFlagRequired("key-file")
	return cmd
}

// tokenCmd mints an access token with the JWT_SECRET from .env
func tokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token <userId> <accountType>",
		Short: "Mint an access token for a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[1] {
			case models.AccountCarer, models.AccountSeniorCarer, models.AccountNurse,
				models.AccountAgency, models.AccountHome, models.AccountAdmin:
			default:
				return fmt.Errorf("unknown account type %q", args[1])
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			token, err := auth.NewManager(cfg.JWTSecret, cfg.TokenTTL).CreateToken(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Generated token for %s:\n%s\n", args[0], token)
			return nil
		},
	}
}
