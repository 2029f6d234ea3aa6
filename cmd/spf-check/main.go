// Package main provides the spf-check command line tool.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/masa23/spfcheck/dns"
	"github.com/masa23/spfcheck/internal/version"
	"github.com/masa23/spfcheck/spf"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "spf-check",
		Short: "spf-check evaluates SPF policies (RFC 7208)",
		Long:  "Command line tool that evaluates the SPF policy of a domain against a client IP, MAIL FROM and HELO identity.",
	}

	rootCmd.AddCommand(checkCmd(), versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func checkCmd() *cobra.Command {
	var (
		ipStr       string
		mailFrom    string
		helo        string
		receiver    string
		nameservers []string
		timeout     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "check <domain>",
		Short: "Evaluate the SPF policy of a domain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ip := net.ParseIP(ipStr)
			if ip == nil {
				return fmt.Errorf("invalid client IP %q", ipStr)
			}
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			checker := &spf.Checker{
				Resolver: dns.NewResolver(dns.Config{Nameservers: nameservers}),
			}
			session := spf.NewSession(ip, mailFrom, helo, receiver)
			result := checker.CheckHost(ctx, session, args[0])

			fmt.Printf("result:       %s\n", result.Status)
			if result.Mechanism != "" {
				fmt.Printf("mechanism:    %s\n", result.Mechanism)
			}
			if result.Reason != "" {
				fmt.Printf("reason:       %s\n", result.Reason)
			}
			if result.Explanation != "" {
				fmt.Printf("explanation:  %s\n", result.Explanation)
			}
			fmt.Printf("Received-SPF: %s\n", result.ReceivedSPF(session))
			return nil
		},
	}
	cmd.Flags().StringVar(&ipStr, "ip", "", "client IP address (required)")
	cmd.Flags().StringVar(&mailFrom, "from", "", "MAIL FROM address")
	cmd.Flags().StringVar(&helo, "helo", "", "HELO/EHLO name")
	cmd.Flags().StringVar(&receiver, "receiver", "", "name of the receiving host")
	cmd.Flags().StringSliceVar(&nameservers, "nameserver", nil, "DNS server to query (host:port, repeatable)")
	cmd.Flags().DurationVar(&timeout, "timeout", 20*time.Second, "overall evaluation timeout")
	_ = cmd.MarkFlagRequired("ip")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("spf-check %s\n", version.Version)
			fmt.Printf("Commit: %s\n", version.Commit)
			fmt.Printf("Built: %s\n", version.BuildTime)
		},
	}
}
