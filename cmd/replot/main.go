// Command replot redraws the heatmaps of a finished sweep from its results
// CSV or from a run recorded in the SQLite store.
package main

import (
	"flag"
	"log"

	"github.com/Noofbiz/ngramSweep/report"
	"github.com/Noofbiz/ngramSweep/store"
	"github.com/Noofbiz/ngramSweep/sweep"
)

func main() {
	inCSV := flag.String("in-csv", "output/results.csv", "results CSV to plot")
	dbPath := flag.String("db", "", "SQLite run store; with -run, read rows from it instead of -in-csv")
	runID := flag.String("run", "", "run id in -db to plot (empty lists the stored runs)")
	plotPath := flag.String("plot", "output/heatmaps.png", "path of the heatmap PNG")
	flag.Parse()

	var (
		rows []sweep.Row
		err  error
	)
	if *dbPath != "" {
		rows, err = rowsFromStore(*dbPath, *runID)
		if err != nil {
			log.Fatalf("failed to read run store: %v", err)
		}
		if rows == nil {
			return
		}
	} else {
		rows, err = report.ReadCSV(*inCSV)
		if err != nil {
			log.Fatalf("failed to read results: %v", err)
		}
	}

	if err := report.Heatmaps(*plotPath, rows); err != nil {
		log.Fatalf("failed to generate heatmaps: %v", err)
	}
	log.Printf("Wrote heatmaps for %d tasks to %s", len(report.Tasks(rows)), *plotPath)
}

// rowsFromStore returns the rows of runID. With no runID it logs the stored
// runs and returns nil.
func rowsFromStore(path, runID string) ([]sweep.Row, error) {
	st, err := store.NewStore(path)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	if runID == "" {
		runs, err := st.Runs()
		if err != nil {
			return nil, err
		}
		for _, r := range runs {
			log.Printf("%s  %s  %d rows  n=[%d,%d) k=%d",
				r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.Rows,
				r.Config.MinN, r.Config.MaxN, r.Config.Folds)
		}
		return nil, nil
	}
	return st.Rows(runID)
}
