package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/avicenna-health/avicenna/internal/config"
	"github.com/avicenna-health/avicenna/internal/database"
)

// cleardata wipes every tracked entry from the database. It is meant for
// resetting development and staging environments, not routine operation.
func main() {
	force := flag.Bool("force", false, "skip the confirmation prompt")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	if !*force && !confirm() {
		fmt.Println("Aborted.")
		return
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.DB)
	if err != nil {
		slog.Error("connecting to postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	tables := []string{"dietary_entries", "exercise_entries", "weight_entries"}
	for _, table := range tables {
		tag, err := pool.Exec(ctx, "DELETE FROM "+table)
		if err != nil {
			slog.Error("purging table", "table", table, "error", err)
			os.Exit(1)
		}
		fmt.Printf("Deleted %d rows from %s.\n", tag.RowsAffected(), table)
	}
}

func confirm() bool {
	fmt.Print("Are you sure you want to delete ALL fitness data? (yes/no): ")
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(answer), "yes")
}
