package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/wegman-software/mapfile-go/internal/geo"
	"github.com/wegman-software/mapfile-go/internal/geodesy"
)

var (
	distanceBearing float64
	distanceProject float64
	distanceRadius  float64
)

var distanceCmd = &cobra.Command{
	Use:   "distance <from> <to>",
	Short: "Calculate the ellipsoidal distance between two positions",
	Long: `Calculate the WGS84 ellipsoidal distance in meters between two positions.

Positions accept decimal degrees and degree-minute-second notation, with
either sign prefixes or hemisphere letters:

  mapfile distance "48.85661 N 2.35222 E" "52.51605 N 13.37691 E"
  mapfile distance "48° 51' 23.8\" N 2° 21' 8.0\" E" "-33.8688 151.2093"

With --project and --bearing the destination argument is replaced by the
position reached from <from> travelling the given distance in meters along
the given bearing in degrees.`,
	Args: cobra.RangeArgs(1, 2),
	Run:  runDistance,
}

func init() {
	rootCmd.AddCommand(distanceCmd)

	distanceCmd.Flags().Float64Var(&distanceProject, "project", 0, "Project from <from> by this distance in meters instead of measuring")
	distanceCmd.Flags().Float64Var(&distanceBearing, "bearing", 0, "Initial bearing in degrees for --project")
	distanceCmd.Flags().Float64Var(&distanceRadius, "radius", 0, "Print the bounding box covering this radius in meters around <from>")
}

func runDistance(cmd *cobra.Command, args []string) {
	from, ok := geo.ParseGeoPoint(args[0])
	if !ok {
		exitWithError(fmt.Sprintf("cannot parse position %q", args[0]), nil)
	}

	if distanceRadius > 0 {
		box := geodesy.BoxByCenterAndRadius(from, distanceRadius)
		fmt.Printf("bbox: %s\n", box.String())
		return
	}

	if distanceProject > 0 {
		target := geodesy.Project(from, distanceBearing, distanceProject)
		fmt.Printf("%s\n", target.GetDisplayText())
		return
	}

	if len(args) < 2 {
		exitWithError("destination position required", nil)
	}
	to, ok := geo.ParseGeoPoint(args[1])
	if !ok {
		exitWithError(fmt.Sprintf("cannot parse position %q", args[1]), nil)
	}

	meters := geodesy.Distance(from, to)
	fmt.Printf("%.3f m (%.3f km)\n", meters, meters/1000)
}
