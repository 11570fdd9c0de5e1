package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/meridian/internal/orientation"
	"github.com/papapumpkin/meridian/internal/ui"
)

var orientCmd = &cobra.Command{
	Use:   "orient",
	Short: "Print Earth orientation angles for an instant",
	Long: `Computes the Earth rotation angle, Greenwich mean sidereal time and the
celestial intermediate pole coordinates (X, Y) with the CIO locator s.
The time is taken as both TT and UT1; the difference is below the
precision of the truncated series.`,
	Args: cobra.NoArgs,
	RunE: runOrient,
}

func init() {
	orientCmd.Flags().String("time", "", "instant in RFC 3339 (default now)")
	orientCmd.Flags().String("convention", orientation.IAU2006.String(), "iau_2000_a, iau_2000_b or iau_2006")
	rootCmd.AddCommand(orientCmd)
}

func runOrient(cmd *cobra.Command, _ []string) error {
	timeFlag, _ := cmd.Flags().GetString("time")
	convFlag, _ := cmd.Flags().GetString("convention")

	conv, err := orientation.ParseConvention(convFlag)
	if err != nil {
		return err
	}
	at := time.Now().UTC()
	if timeFlag != "" {
		if at, err = time.Parse(time.RFC3339Nano, timeFlag); err != nil {
			return fmt.Errorf("invalid --time: %w", err)
		}
	}

	// Angles are evaluated at offset zero from the instant's own Julian day.
	jd := orientation.JulianDay(at)
	gmst, err := orientation.GreenwichMeanSiderealTime(0, 0, jd, conv)
	if err != nil {
		return err
	}
	xy, s, err := orientation.CIPAndCIOLocator(0, jd, conv)
	if err != nil {
		return err
	}
	ui.NewTo(cmd.OutOrStdout()).Orientation(ui.OrientationData{
		Time:       at,
		JulianDay:  jd,
		Convention: conv.String(),
		ERA:        orientation.EarthRotationAngle(0, jd),
		GMST:       gmst,
		X:          xy[0],
		Y:          xy[1],
		S:          s,
	})
	return nil
}
