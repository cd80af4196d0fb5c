/*
File Name:  main.go

Minimal composition harness: loads config, builds the node, optionally
starts the webapi dashboard, dials an initial peer if given, then runs a
line-based shell over the node's operations. The shell itself is out of
scope for the core; this is the thinnest harness needed to exercise it.
*/

package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	core "github.com/othiagos/p2p-blockchain-chat"
	"github.com/othiagos/p2p-blockchain-chat/webapi"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := core.LoadConfig("config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return core.ExitErrorConfigParse
	}

	logger, err := core.NewLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "log init: %v\n", err)
		return core.ExitErrorLogInit
	}

	backend := core.NewBackend(cfg, logger)

	if cfg.Webapi.Enabled {
		server := webapi.NewServer(backend)
		go func() {
			if err := server.ListenAndServe(cfg.Webapi.Listen); err != nil {
				logger.Printf("webapi stopped: %v\n", err)
			}
		}()
	}

	if err := backend.StartListener(); err != nil {
		fmt.Fprintf(os.Stderr, "listener: %v\n", err)
		return core.ExitErrorListenerBind
	}

	if len(os.Args) > 1 {
		backend.Connect(os.Args[1])
	} else if cfg.InitialPeer != "" {
		backend.Connect(cfg.InitialPeer)
	}

	return runShell(backend)
}

func runShell(backend *core.Backend) int {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("chatnode ready. commands: append <text>, history, peers, connect <addr>, status, ingest <path>, quit")

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		cmd, arg, _ := strings.Cut(line, " ")
		switch cmd {
		case "append":
			if backend.AppendMessage(arg) {
				fmt.Println("ok")
			} else {
				fmt.Println("rejected: invalid message")
			}

		case "history":
			for i, msg := range backend.ListHistory() {
				fmt.Printf("%d: %s\n", i, msg)
			}

		case "peers":
			for _, peer := range backend.ListPeers() {
				fmt.Println(peer)
			}

		case "connect":
			backend.Connect(arg)
			fmt.Println("connecting...")

		case "status":
			status := backend.Status()
			fmt.Printf("port=%d peers=%d archive_len=%d\n", status.Port, status.PeerCount, status.ArchiveLen)

		case "ingest":
			accepted, err := backend.IngestFile(arg)
			if err != nil {
				fmt.Printf("ingest failed: %v\n", err)
				continue
			}
			fmt.Printf("ingested %d messages\n", accepted)

		case "quit":
			return core.ExitSuccess

		default:
			fmt.Printf("unknown command: %s\n", cmd)
		}
	}

	return core.ExitSuccess
}
