// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"
)

func newHeaderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "header",
		Short: "Print the Authorization header for the configured credentials",
		Long: `Print the Authorization header value the client would send with the next request.
For bearer authentication this requests a token from the identity endpoint.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, done, err := loadClient(cmd)
			if err != nil {
				return err
			}
			defer done()
			header, err := client.AuthorizationHeader(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to authenticate: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), header)
			return err
		},
	}
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <path>",
		Short: "Send an authenticated GET request",
		Long: `Send an authenticated GET request for a path relative to openworld.endpoint and
print the response status and body.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, done, err := loadClient(cmd)
			if err != nil {
				return err
			}
			defer done()

			req, err := client.NewRequest(cmd.Context(), http.MethodGet, args[0], nil)
			if err != nil {
				return err
			}
			resp, err := client.Do(req)
			if err != nil {
				return fmt.Errorf("request failed: %w", err)
			}
			defer resp.Body.Close()

			out := cmd.OutOrStdout()
			if _, err := fmt.Fprintln(out, resp.Status); err != nil {
				return err
			}
			if _, err := io.Copy(out, resp.Body); err != nil {
				return fmt.Errorf("failed to read response body: %w", err)
			}
			if resp.StatusCode >= http.StatusBadRequest {
				return fmt.Errorf("request returned status %d", resp.StatusCode)
			}
			return nil
		},
	}
}
