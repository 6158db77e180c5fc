package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"

	gnes "gnes/nes"
)

const statsAddr = "localhost:18920"

func validINesPath(romPath string) error {
	stat, err := os.Stat(romPath)
	if err != nil {
		return fmt.Errorf("iNes Rom file path (\"%v\") does not exist or is not valid", romPath)
	} else if stat.IsDir() {
		return fmt.Errorf("iNes Rom file path (\"%v\") points to a directory", romPath)
	}
	return nil
}

func launchStatsView() {
	viewer.SetConfiguration(viewer.WithAddr(statsAddr))
	mgr := statsview.New()
	go mgr.Start()

	fmt.Printf("stats server available at http://%s/debug/statsview\n", statsAddr)
}

func main() {
	romFlag := flag.String("rom", "", "path to the iNes Rom file to run")
	verbose := flag.Bool("verbose", false, "trace every instruction to the log")
	headless := flag.Bool("headless", false, "run without a window")
	stats := flag.Bool("statsview", false, "serve live runtime stats over http")
	flag.Parse()

	// the rom path may be given positionally or through -rom
	romPath := romFlag
	if *romPath == "" && flag.NArg() > 0 {
		arg := flag.Arg(0)
		romPath = &arg
	}

	if err := validINesPath(*romPath); err != nil {
		fmt.Printf("Failed to start gnes, err=%v\n", err)
		os.Exit(1)
	}

	if *stats {
		launchStatsView()
	}

	nes, err := gnes.NewNES(
		gnes.CartPath(*romPath),
		gnes.Verbose(*verbose),
		gnes.Headless(*headless))
	if err != nil {
		fmt.Printf("Failed to start gnes, err=%v\n", err)
		os.Exit(1)
	}

	if err := nes.Run(); err != nil {
		fmt.Printf("gnes stopped, err=%v\n", err)
		os.Exit(1)
	}
}
