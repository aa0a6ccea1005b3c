package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/siakng/monopoly-server-go/internal/game"
	"go.uber.org/zap"
)

var (
	dir    = flag.String("dir", "replays", "directory holding archived replays")
	gameID = flag.String("game", "", "id of the game to inspect")
)

func main() {
	flag.Parse()
	if *gameID == "" {
		fmt.Fprintln(os.Stderr, "usage: replay -dir <dir> -game <id>")
		os.Exit(2)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	archive, err := game.NewReplayArchive(*dir, logger)
	if err != nil {
		logger.Fatal("failed to open replay archive", zap.Error(err))
	}
	replay, err := archive.Load(*gameID)
	if err != nil {
		logger.Fatal("failed to load replay", zap.String("game_id", *gameID), zap.Error(err))
	}

	fmt.Printf("game %s seed %d, %d commands, verified\n", replay.GameID, replay.Seed, replay.Size())
	for i := 0; ; i++ {
		entry, ok := replay.EntryAt(i)
		if !ok {
			break
		}
		cmd := entry.Command
		fmt.Printf("%4d  %-20s %-12s %s\n", i, cmd.Type, cmd.PlayerID, entry.Checksum)
	}
}
