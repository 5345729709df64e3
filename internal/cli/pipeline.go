package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"edluar/pipeline/internal/board"
	"edluar/pipeline/internal/client"
	"edluar/pipeline/internal/model"
	"edluar/pipeline/internal/tui"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Bold(true)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("7"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("13"))
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the board, one section per stage",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := newStoreClient(cmd)
		if err != nil {
			return err
		}
		defer sc.Close()

		job, _ := cmd.Flags().GetString("job")
		grouped, err := sc.FetchApplications(cmd.Context(), job)
		if err != nil {
			return err
		}
		printBoard(cmd.OutOrStdout(), grouped)
		return nil
	},
}

var moveCmd = &cobra.Command{
	Use:   "move <application-id> <status>",
	Short: "Move an application to any stage",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		to, err := model.ParseStatus(args[1])
		if err != nil {
			return err
		}
		sc, err := newStoreClient(cmd)
		if err != nil {
			return err
		}
		defer sc.Close()

		upd, err := sc.UpdateApplicationStage(cmd.Context(), args[0], to)
		if err != nil {
			return err
		}
		printUpdate(cmd.OutOrStdout(), upd.Application.CandidateName, upd.Application.Status, upd.SuggestAction)
		return nil
	},
}

var advanceCmd = &cobra.Command{
	Use:   "advance <application-id>",
	Short: "Move an application one stage forward",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := newStoreClient(cmd)
		if err != nil {
			return err
		}
		defer sc.Close()

		s := board.NewSession(sc, board.Options{Logger: logger})
		if err := s.Load(cmd.Context(), ""); err != nil {
			return err
		}
		if _, ok := s.Board.Find(args[0]); !ok {
			return fmt.Errorf("application %s is not on the board", args[0])
		}

		out := s.QuickAdvance(cmd.Context(), args[0])
		if out.AdvanceErr != nil {
			return out.AdvanceErr
		}
		if !out.Advanced {
			fmt.Fprintln(cmd.OutOrStdout(), "Already hired, nothing to do.")
			return nil
		}
		app, _ := s.Board.Get(args[0])
		printUpdate(cmd.OutOrStdout(), app.CandidateName, out.Move.To, out.Hint)
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history <application-id>",
	Short: "Show an application's stage changes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		events, err := client.New(cfg.ServerURL, nil).History(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(events) == 0 {
			fmt.Fprintln(out, "No stage changes yet.")
			return nil
		}
		fmt.Fprintln(out, titleStyle.Render("History of "+args[0]))
		for _, e := range events {
			fmt.Fprintf(out, "  %s  %s → %s\n",
				valueStyle.Render(e.At.Local().Format("2006-01-02 15:04")), e.From, labelStyle.Render(string(e.To)))
		}
		return nil
	},
}

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List jobs with their hiring progress",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		jobs, err := client.New(cfg.ServerURL, nil).Jobs(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, titleStyle.Render("Jobs"))
		for _, j := range jobs {
			seats := "unlimited"
			if j.Headcount > 0 {
				seats = fmt.Sprintf("%d/%d hired", j.HiredCount, j.Headcount)
			}
			fmt.Fprintf(out, "  %s %s  %s  [%s]\n", labelStyle.Render(j.Title), valueStyle.Render(j.ID), seats, j.Status)
		}
		return nil
	},
}

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Open the interactive Kanban board",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := newStoreClient(cmd)
		if err != nil {
			return err
		}
		defer sc.Close()

		job, _ := cmd.Flags().GetString("job")
		m := tui.New(cmd.Context(), sc, job, board.Options{
			ActivationDistance: cfg.DragThreshold,
			Logger:             logger,
		})
		return tui.Run(m)
	},
}

func init() {
	listCmd.Flags().String("job", "", "only show applications for this job id")
	boardCmd.Flags().String("job", "", "only show applications for this job id")
}

func printBoard(w io.Writer, g model.Grouped) {
	for _, st := range model.ActiveStages {
		apps := g[st]
		fmt.Fprintf(w, "%s %s\n", titleStyle.Render(strings.ToUpper(string(st))), valueStyle.Render(fmt.Sprintf("(%d)", len(apps))))
		for _, a := range apps {
			fmt.Fprintf(w, "  %s  %s  %s\n", valueStyle.Render(a.ID), labelStyle.Render(a.CandidateName), a.JobTitle)
		}
	}
}

func printUpdate(w io.Writer, name string, st model.Status, hint model.Hint) {
	fmt.Fprintf(w, "%s %s → %s\n", titleStyle.Render("✓"), name, labelStyle.Render(string(st)))
	if p := (board.Prompt{Show: true, Action: hint}); p.Message() != "" {
		fmt.Fprintln(w, hintStyle.Render("  "+p.Message()))
	}
}
