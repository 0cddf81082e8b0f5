package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/ssh-vom/mangashelf/internal/feed"
	"github.com/ssh-vom/mangashelf/internal/logging"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))

func newLatestCmd(state *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "latest",
		Short: "List the most recently updated titles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := buildService(state.cfg, logging.New(os.Stderr, logging.FormatText, state.cfg.Verbose))
			if err != nil {
				return err
			}
			cards, err := service.Latest(cmd.Context())
			if err != nil {
				return err
			}
			return printCards(cmd.OutOrStdout(), cards, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON including cover data URIs")
	return cmd
}

func newSearchCmd(state *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search titles by name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := buildService(state.cfg, logging.New(os.Stderr, logging.FormatText, state.cfg.Verbose))
			if err != nil {
				return err
			}
			cards, err := service.Search(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			return printCards(cmd.OutOrStdout(), cards, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON including cover data URIs")
	return cmd
}

func newTopCmd(state *app) *cobra.Command {
	var asJSON bool
	var rankingName string
	cmd := &cobra.Command{
		Use:   "top",
		Short: "Rank titles by follows, rating and recent uploads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := buildService(state.cfg, logging.New(os.Stderr, logging.FormatText, state.cfg.Verbose))
			if err != nil {
				return err
			}

			if rankingName != "" {
				ranking, err := feed.ParseRanking(rankingName)
				if err != nil {
					return err
				}
				items, err := service.TopRanked(cmd.Context(), ranking)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), items)
				}
				return printRanked(cmd.OutOrStdout(), string(ranking), items)
			}

			listings, err := service.TopListings(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), listings)
			}
			for _, section := range []struct {
				title string
				items []feed.RankedItem
			}{
				{"Most followed", listings.Follows},
				{"Highest rated", listings.Rating},
				{"Recently uploaded", listings.Progress},
			} {
				if err := printRanked(cmd.OutOrStdout(), section.title, section.items); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON including cover data URIs")
	cmd.Flags().StringVar(&rankingName, "by", "", "single ranking: follows, rating or progress")
	return cmd
}

func printCards(w io.Writer, cards []feed.Card, asJSON bool) error {
	if asJSON {
		return writeJSON(w, cards)
	}
	if len(cards) == 0 {
		_, err := fmt.Fprintln(w, "No titles found.")
		return err
	}

	rows := make([][]string, 0, len(cards))
	for _, card := range cards {
		rows = append(rows, []string{card.Title, card.Status, formatDate(card.UpdatedAt), card.ID})
	}
	_, err := fmt.Fprintln(w, renderTable([]string{"Title", "Status", "Updated", "ID"}, rows))
	return err
}

func printRanked(w io.Writer, title string, items []feed.RankedItem) error {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{strconv.Itoa(item.Rank), item.Title, formatDate(item.UpdatedAt), item.ID})
	}
	_, err := fmt.Fprintf(w, "%s\n%s\n", headerStyle.Render(title), renderTable([]string{"#", "Title", "Updated", "ID"}, rows))
	return err
}

func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		String()
}

func formatDate(value time.Time) string {
	if value.IsZero() {
		return "-"
	}
	return value.Format("2006-01-02")
}

func writeJSON(w io.Writer, payload any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}
