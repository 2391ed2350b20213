package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/wegman-software/mapfile-go/internal/geo"
	"github.com/wegman-software/mapfile-go/internal/tile"
)

var tileLevelName string

var tileCmd = &cobra.Command{
	Use:   "tile <position>",
	Short: "Resolve a position to its Web-Mercator tile",
	Long: `Resolve a position to its OSM tile coordinates at a named magnification
and print the tile together with its bounding box:

  mapfile tile "48.85661 N 2.35222 E" --level city`,
	Args: cobra.ExactArgs(1),
	Run:  runTile,
}

func init() {
	rootCmd.AddCommand(tileCmd)

	tileCmd.Flags().StringVarP(&tileLevelName, "level", "l", "city", "Magnification level name (world, state, city, suburb, street, house, ...)")
}

func runTile(cmd *cobra.Command, args []string) {
	coord, ok := geo.ParseGeoPoint(args[0])
	if !ok {
		exitWithError(fmt.Sprintf("cannot parse position %q", args[0]), nil)
	}

	mag, ok := tile.ConvertNameToMag(tileLevelName)
	if !ok {
		exitWithError(fmt.Sprintf("unknown magnification level %q", tileLevelName), nil)
	}

	t := tile.GetOSMTile(mag, coord)
	box := t.GetBoundingBox(mag)

	fmt.Printf("level:  %s (zoom %d)\n", tileLevelName, mag.Level())
	fmt.Printf("tile:   %s\n", t.String())
	fmt.Printf("bbox:   %s\n", box.String())
	fmt.Printf("center: %s\n", box.GetCenter().GetDisplayText())
}
