package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password",
	Short: "Print a bcrypt hash for ADMIN_PASSWORD_HASH",
	Long:  "Reads the admin password from the first line of stdin and prints its bcrypt hash using the configured cost.",
	Args:  cobra.NoArgs,
	RunE:  runHashPassword,
}

func init() {
	rootCmd.AddCommand(hashPasswordCmd)
}

func runHashPassword(cmd *cobra.Command, _ []string) error {
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		if err != nil {
			return fmt.Errorf("failed to read password from stdin: %w", err)
		}
		return fmt.Errorf("password must not be empty")
	}

	hash, err := cfg.Admin.HashPassword(password)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), hash)
	return nil
}
