package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/astei/anvil"
	"github.com/klauspost/compress/zstd"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "anvildump",
		Usage: "inspects Anvil region directories and extracts chunk data",
		Commands: []*cli.Command{
			{
				Name:      "list",
				Usage:     "list the regions in a region directory with their chunk counts",
				ArgsUsage: "<region-dir>",
				Action:    runList,
			},
			{
				Name:      "dump",
				Usage:     "write one chunk's uncompressed NBT to stdout or a file",
				ArgsUsage: "<region-dir>",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "cx", Usage: "absolute chunk X coordinate", Required: true},
					&cli.IntFlag{Name: "cz", Usage: "absolute chunk Z coordinate", Required: true},
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file instead of stdout"},
					&cli.BoolFlag{Name: "zstd", Usage: "compress the output with zstd"},
				},
				Action: runDump,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runList(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("need a region directory to work with", 1)
	}
	dir := c.Args().Get(0)

	loader := anvil.NewFileLoader(dir, anvil.DecodeJavaChunk)
	coords, err := loader.List()
	if err != nil {
		return err
	}

	total := uint(0)
	for _, coord := range coords {
		file, err := os.Open(filepath.Join(dir, anvil.RegionFilename(coord.X, coord.Z)))
		if err != nil {
			return err
		}
		reader := anvil.NewReader(file)
		occupied, err := reader.Occupied()
		if closeErr := reader.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return err
		}
		fmt.Printf("%s\t%d chunks\n", anvil.RegionFilename(coord.X, coord.Z), occupied.Count())
		total += occupied.Count()
	}
	fmt.Printf("%d regions, %d chunks\n", len(coords), total)
	return nil
}

func runDump(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("need a region directory to work with", 1)
	}
	dir := c.Args().Get(0)
	cx, cz := c.Int("cx"), c.Int("cz")

	file, err := os.Open(filepath.Join(dir, anvil.RegionFilename(anvil.RCoord(cx>>5), anvil.RCoord(cz>>5))))
	if err != nil {
		return err
	}
	reader := anvil.NewReader(file)
	defer reader.Close()

	data, err := reader.ReadChunk(anvil.CCoord(cx&31), anvil.CCoord(cz&31))
	if err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	if name := c.String("out"); name != "" {
		f, err := os.Create(name)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	if c.Bool("zstd") {
		zw, err := zstd.NewWriter(out)
		if err != nil {
			return err
		}
		defer zw.Close()
		out = zw
	}

	_, err = out.Write(data)
	return err
}
