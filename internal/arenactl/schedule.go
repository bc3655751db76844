package arenactl

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/assemblymechs/arena-core/internal/protocol"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "List matches queued to run",
	RunE:  runSchedule,
}

func runSchedule(cmd *cobra.Command, args []string) error {
	resp, err := http.Get(apiURL + "/api/schedule")
	if err != nil {
		return fmt.Errorf("fetch schedule: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch schedule: unexpected status %s", resp.Status)
	}

	var sched protocol.ScheduleResponse
	if err := json.NewDecoder(resp.Body).Decode(&sched); err != nil {
		return fmt.Errorf("decode schedule: %w", err)
	}

	if len(sched.Matches) == 0 {
		fmt.Println("no matches scheduled")
		return nil
	}

	table := tablewriter.NewTable(os.Stdout, tablewriter.WithConfig(tablewriter.Config{
		Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignLeft}},
		Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignLeft}},
	}))
	table.Header("MATCH ID", "ACTORS", "START TIME")
	for _, m := range sched.Matches {
		start := "unscheduled"
		if m.StartTime > 0 {
			start = time.Unix(m.StartTime, 0).Local().Format(time.RFC3339)
		}
		table.Append(m.MatchID, strings.Join(m.Actors, ", "), start)
	}
	table.Render()

	return nil
}
