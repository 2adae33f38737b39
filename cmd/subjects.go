package cmd

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-attendance/internal/attendance"
	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/storage"
)

var subjectsCmd = &cobra.Command{
	Use:   "subjects",
	Short: "List enrolled subjects and their photo counts",
	Long: `Subjects lists every subject folder found in the enrollment photo bucket
together with the number of photos available for reference building.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()

		store, err := storage.New(cfg.Storage.URL, cfg.Storage.Key)
		if err != nil {
			log.Fatalf("could not create storage client: %v", err)
		}

		paths, err := store.List(cmd.Context(), cfg.Storage.StudentBucket, "")
		if err != nil {
			log.Fatalf("could not list bucket %q: %v", cfg.Storage.StudentBucket, err)
		}

		counts := make(map[attendance.SubjectID]int)
		for _, p := range paths {
			folder, _, found := strings.Cut(p, "/")
			if !found {
				continue // top-level blob, not an enrollment folder
			}
			counts[attendance.NormalizeSubjectID(folder)]++
		}

		ids := make([]attendance.SubjectID, 0, len(counts))
		for id := range counts {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

		for _, id := range ids {
			fmt.Printf("%-30s %d photos\n", id, counts[id])
		}
		fmt.Printf("\n%d subjects enrolled\n", len(ids))
	},
}

func init() {
	rootCmd.AddCommand(subjectsCmd)
}
