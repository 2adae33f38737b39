package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-attendance/internal/attendance"
	"github.com/kozaktomas/face-attendance/internal/config"
)

var recognizeCmd = &cobra.Command{
	Use:   "recognize",
	Short: "Run attendance recognition on a classroom photo",
	Long: `Recognize reads a roster file, builds reference embeddings from every
enrolled subject's photos in storage and matches them against the faces
detected in the given classroom frame.`,
	Run: func(cmd *cobra.Command, args []string) {
		framePath := mustGetString(cmd, "frame")
		rosterPath := mustGetString(cmd, "roster")
		threshold := mustGetFloat64(cmd, "threshold")
		asJSON := mustGetBool(cmd, "json")

		roster, err := config.LoadRoster(rosterPath)
		if err != nil {
			log.Fatalf("could not load roster: %v", err)
		}

		frame, err := os.ReadFile(framePath)
		if err != nil {
			log.Fatalf("could not read frame: %v", err)
		}

		cfg := config.Load()
		if threshold > 0 {
			cfg.Engine.SimilarityThreshold = threshold
		}

		engine, _, err := buildEngine(cfg)
		if err != nil {
			log.Fatalf("could not initialize recognition engine: %v", err)
		}

		if !asJSON {
			var bar *progressbar.ProgressBar
			engine.SetBuildProgress(func(done, total int) {
				if bar == nil {
					bar = progressbar.Default(int64(total), "building references")
				}
				_ = bar.Set(done)
			})
		}

		record, warnings, err := engine.TakeAttendance(cmd.Context(), roster.Enrolled, frame)
		if err != nil {
			log.Fatalf("recognition failed: %v", err)
		}

		if asJSON {
			printJSONRecord(roster.Session, record, warnings)
			return
		}
		printRecord(roster.Session, roster.Enrolled, record, warnings)
	},
}

func printRecord(session string, enrolled []string, record *attendance.AttendanceRecord, warnings []attendance.Warning) {
	for _, w := range warnings {
		fmt.Printf("[WARN] %s\n", w)
	}

	fmt.Printf("\n--- Attendance (Session: %s) ---\n", session)
	for _, id := range attendance.NormalizeRoster(enrolled) {
		status := record.Subjects[id]
		fmt.Printf("%-30s %-8s %.2f\n", id, status.Status, status.SimilarityPercent)
	}
	fmt.Printf("\n%d of %d present\n", record.TotalPresent, len(record.Subjects))
}

func printJSONRecord(session string, record *attendance.AttendanceRecord, warnings []attendance.Warning) {
	warningTexts := make([]string, 0, len(warnings))
	for _, w := range warnings {
		warningTexts = append(warningTexts, w.String())
	}

	out := struct {
		Session    string                       `json:"session_id"`
		Attendance *attendance.AttendanceRecord `json:"attendance"`
		Warnings   []string                     `json:"warnings"`
	}{
		Session:    session,
		Attendance: record,
		Warnings:   warningTexts,
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(out); err != nil {
		log.Fatalf("could not encode result: %v", err)
	}
}

func init() {
	recognizeCmd.Flags().StringP("frame", "f", "", "path to the classroom photo (required)")
	recognizeCmd.Flags().StringP("roster", "r", "", "path to the roster YAML file (required)")
	recognizeCmd.Flags().Float64P("threshold", "t", 0, "similarity threshold override (0 = use config)")
	recognizeCmd.Flags().Bool("json", false, "print the attendance record as JSON")
	_ = recognizeCmd.MarkFlagRequired("frame")
	_ = recognizeCmd.MarkFlagRequired("roster")
	rootCmd.AddCommand(recognizeCmd)
}
