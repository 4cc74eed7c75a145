package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/prysmaticlabs/forkchoice/beacon-chain/blockchain"
	"github.com/prysmaticlabs/forkchoice/config/params"
	"github.com/urfave/cli/v2"
)

var (
	runCommand = &cli.Command{
		Name:   "run",
		Usage:  "rebuild fork choice from the database and follow the slot clock",
		Action: run,
	}
	headCommand = &cli.Command{
		Name:   "head",
		Usage:  "print the head and checkpoints of the fork choice stored in the database",
		Action: printHead,
	}
	dotCommand = &cli.Command{
		Name:   "dot",
		Usage:  "print the fork choice tree stored in the database in graphviz format",
		Action: printDot,
	}
	dumpConfigCommand = &cli.Command{
		Name:   "dump-config",
		Usage:  "print the active chain config as yaml",
		Action: dumpConfig,
	}
)

func run(cliCtx *cli.Context) error {
	n, err := newForkChoiceNode(cliCtx)
	if err != nil {
		return err
	}
	n.Start()
	return nil
}

// replayed opens the database, replays it into a fresh fork choice store and
// hands the service to fn before closing the database.
func replayed(cliCtx *cli.Context, fn func(*blockchain.Service) error) error {
	beaconDB, err := openDB(cliCtx.Context, cliCtx)
	if err != nil {
		return err
	}
	defer func() {
		if err := beaconDB.Close(); err != nil {
			log.WithError(err).Error("Failed to close database")
		}
	}()
	s, err := newChainService(cliCtx.Context, cliCtx, beaconDB)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Stop(); err != nil {
			log.WithError(err).Error("Failed to stop blockchain service")
		}
	}()
	if err := s.StartFromDB(cliCtx.Context); err != nil {
		return errors.Wrap(err, "could not rebuild fork choice")
	}
	return fn(s)
}

func printHead(cliCtx *cli.Context) error {
	return replayed(cliCtx, func(s *blockchain.Service) error {
		f := s.ForkChoicer()
		head := s.HeadRoot()
		b, err := f.Block(head)
		if err != nil {
			return err
		}
		justified := f.JustifiedCheckpoint()
		finalized := f.FinalizedCheckpoint()
		w := cliCtx.App.Writer
		fmt.Fprintf(w, "head: %#x slot: %d execution: %s\n", head, b.Slot, b.ExecutionStatus)
		fmt.Fprintf(w, "justified: epoch %d root %#x\n", justified.Epoch, justified.Root)
		fmt.Fprintf(w, "finalized: epoch %d root %#x\n", finalized.Epoch, finalized.Root)
		fmt.Fprintf(w, "nodes: %d\n", f.NodeCount())
		return nil
	})
}

func printDot(cliCtx *cli.Context) error {
	return replayed(cliCtx, func(s *blockchain.Service) error {
		graph, err := s.TreeGraph(cliCtx.Context)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cliCtx.App.Writer, graph)
		return err
	})
}

func dumpConfig(cliCtx *cli.Context) error {
	out, err := params.ConfigToYaml(params.BeaconConfig())
	if err != nil {
		return errors.Wrap(err, "could not marshal config")
	}
	_, err = cliCtx.App.Writer.Write(out)
	return err
}
