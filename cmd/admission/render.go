package main

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/uclouvain/admission-core/internal/application/query"
	"github.com/uclouvain/admission-core/internal/domain/checklist"
	"github.com/uclouvain/admission-core/internal/infrastructure/persistence/postgres"
	"github.com/uclouvain/admission-core/internal/infrastructure/scheduler"
)

const timeLayout = "2006-01-02 15:04"

func newTable(w io.Writer, title string) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	if title != "" {
		tw.SetTitle(title)
	}
	return tw
}

func renderMigrations(w io.Writer, migrations []postgres.Migration) {
	tw := newTable(w, "")
	tw.AppendHeader(table.Row{"Version", "Name", "Applied", "Applied At"})
	for _, m := range migrations {
		applied, at := "no", "-"
		if m.IsApplied {
			applied = "yes"
			at = m.AppliedAt.Format(timeLayout)
		}
		tw.AppendRow(table.Row{m.Version, m.Name, applied, at})
	}
	tw.Render()
}

func renderCommands(w io.Writer, names []string) {
	tw := newTable(w, "")
	tw.AppendHeader(table.Row{"#", "Command"})
	for i, name := range names {
		tw.AppendRow(table.Row{i + 1, name})
	}
	tw.AppendFooter(table.Row{"", fmt.Sprintf("%d registered", len(names))})
	tw.Render()
}

func renderProposition(w io.Writer, p *query.PropositionDTO) {
	tw := newTable(w, "Proposition "+p.UUID)
	reference := "-"
	if p.Reference > 0 {
		reference = fmt.Sprintf("%d", p.Reference)
	}
	tw.AppendRows([]table.Row{
		{"Reference", reference},
		{"Candidate", p.CandidateID},
		{"Training", fmt.Sprintf("%s %d", p.Training.Acronym, p.Training.Year)},
		{"Admission type", p.AdmissionType},
		{"Status", fmt.Sprintf("%s (%s)", p.StatusLabel, p.Status)},
		{"Financing", orDash(p.FinancingType)},
	})
	if p.CDDRefusal != "" {
		tw.AppendRow(table.Row{"CDD refusal", p.CDDRefusal})
	}
	if p.SICRefusal != "" {
		tw.AppendRow(table.Row{"SIC refusal", p.SICRefusal})
	}
	tw.Render()
}

func renderGroup(w io.Writer, g *query.GroupDTO) {
	tw := newTable(w, "Supervision")
	tw.AppendHeader(table.Row{"Role", "Person", "State", "Reference", "Updated"})
	row := func(role string, s query.SignatureDTO) table.Row {
		ref := ""
		if s.IsReference {
			ref = "*"
		}
		updated := "-"
		if !s.UpdatedAt.IsZero() {
			updated = s.UpdatedAt.Format(timeLayout)
		}
		return table.Row{role, s.Person, s.StateLabel, ref, updated}
	}
	for _, s := range g.Promoters {
		tw.AppendRow(row("promoter", s))
	}
	for _, s := range g.CAMembers {
		tw.AppendRow(row("ca member", s))
	}
	tw.Render()
}

func renderChecklist(w io.Writer, c *query.ChecklistDTO) {
	tw := newTable(w, "Checklist ("+c.Context+")")
	tw.AppendHeader(table.Row{"Tab", "Status", "Extra"})
	var walk func(nodes []query.ChecklistNodeDTO, depth int)
	walk = func(nodes []query.ChecklistNodeDTO, depth int) {
		for _, n := range nodes {
			label := n.Label
			if label == "" {
				label = n.Tab
			}
			tw.AppendRow(table.Row{strings.Repeat("  ", depth) + label, n.StatusLabel, formatExtra(n.Extra)})
			walk(n.Children, depth+1)
		}
	}
	walk(c.Tabs, 0)
	tw.Render()
}

// renderChecklistConfiguration prints every legal status of every tab of
// the given contexts.
func renderChecklistConfiguration(w io.Writer, cfg *checklist.Configuration, contexts ...checklist.Context) error {
	for _, ctx := range contexts {
		tw := newTable(w, "Checklist configuration ("+string(ctx)+")")
		tw.AppendHeader(table.Row{"Tab", "Status ID", "Status", "Extra", "Initial"})
		for _, tab := range cfg.Tabs(ctx) {
			tc, err := cfg.Tab(ctx, tab)
			if err != nil {
				return err
			}
			rows := []checklist.TabConfig{tc}
			if tc.Children != "" {
				child, err := cfg.Tab(ctx, tc.Children)
				if err != nil {
					return err
				}
				rows = append(rows, child)
			}
			for _, t := range rows {
				for _, s := range t.Statuses {
					initial := ""
					if s.Initial {
						initial = "*"
					}
					tw.AppendRow(table.Row{string(t.Tab), s.ID, string(s.Status), formatExtra(s.Extra), initial})
				}
			}
			tw.AppendSeparator()
		}
		tw.Render()
	}
	return nil
}

func formatExtra(extra map[string]string) string {
	if len(extra) == 0 {
		return ""
	}
	parts := make([]string, 0, len(extra))
	for k, v := range extra {
		parts = append(parts, k+"="+v)
	}
	slices.Sort(parts)
	return strings.Join(parts, ", ")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func renderHistory(w io.Writer, entries []query.EntryDTO) {
	tw := newTable(w, "History")
	tw.AppendHeader(table.Row{"When", "Author", "Message", "Tags"})
	for _, e := range entries {
		tw.AppendRow(table.Row{e.At.Format(timeLayout), e.Author, e.Message, strings.Join(e.Tags, ", ")})
	}
	tw.Render()
}

func renderJobs(w io.Writer, jobs []scheduler.JobInfo) {
	tw := newTable(w, "")
	tw.AppendHeader(table.Row{"Job", "Schedule", "Next Run", "Runs", "Failures"})
	for _, j := range jobs {
		tw.AppendRow(table.Row{j.Name, j.Schedule, j.NextRun.Format(timeLayout), j.RunCount, j.FailCount})
	}
	tw.Render()
}
