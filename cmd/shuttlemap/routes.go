package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/babcock-shuttle/shuttlemap/internal/fleet"
)

var routeFlags struct {
	origin      string
	destination string
	distanceKm  float64
	etaMinutes  int
}

// routesCmd manages the route queue of a shuttle
var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "List and manage a shuttle's routes",
}

var routesListCmd = &cobra.Command{
	Use:   "list [vehicle-id]",
	Short: "List the routes assigned to a shuttle",
	Args:  cobra.ExactArgs(1),
	RunE:  listRoutes,
}

var routesAddCmd = &cobra.Command{
	Use:   "add [vehicle-id]",
	Short: "Append a route to a shuttle's queue",
	Long: `Appends a route to a shuttle's queue.

Example:
  shuttlemap routes add 7 --origin "Winslow Hall" --destination "Andrews Park" \
    --distance 1.2 --eta 6`,
	Args: cobra.ExactArgs(1),
	RunE: addRoute,
}

var routesAdvanceCmd = &cobra.Command{
	Use:   "advance [vehicle-id]",
	Short: "Mark the current route completed and move to the next",
	Args:  cobra.ExactArgs(1),
	RunE:  advanceRoute,
}

func init() {
	routesAddCmd.Flags().StringVar(&routeFlags.origin, "origin", "", "Where the route starts (required)")
	routesAddCmd.Flags().StringVar(&routeFlags.destination, "destination", "", "Where the route ends (required)")
	routesAddCmd.Flags().Float64Var(&routeFlags.distanceKm, "distance", 0, "Distance in kilometers")
	routesAddCmd.Flags().IntVar(&routeFlags.etaMinutes, "eta", 0, "Estimated travel time in minutes")
	_ = routesAddCmd.MarkFlagRequired("origin")
	_ = routesAddCmd.MarkFlagRequired("destination")

	routesCmd.AddCommand(routesListCmd)
	routesCmd.AddCommand(routesAddCmd)
	routesCmd.AddCommand(routesAdvanceCmd)
}

func printRoutes(w io.Writer, routes []fleet.Route) {
	if len(routes) == 0 {
		fmt.Fprintln(w, "No routes assigned.")
		return
	}
	t := newTable("#", "Origin", "Destination", "Distance", "ETA", "Done")
	for _, r := range routes {
		done := ""
		if r.Completed {
			done = "✓"
		}
		t.Row(
			strconv.Itoa(r.Order),
			r.Origin,
			r.Destination,
			strconv.FormatFloat(r.DistanceKm, 'f', -1, 64)+" km",
			fmt.Sprintf("~%d min", r.EtaMinutes),
			done,
		)
	}
	fmt.Fprintln(w, t.Render())
}

func listRoutes(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	routes, err := newClient().ListRoutes(cmd.Context(), id)
	if err != nil {
		return err
	}
	printRoutes(cmd.OutOrStdout(), routes)
	return nil
}

func addRoute(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	r := fleet.Route{
		Origin:      routeFlags.origin,
		Destination: routeFlags.destination,
		DistanceKm:  routeFlags.distanceKm,
		EtaMinutes:  routeFlags.etaMinutes,
	}
	added, err := newClient().AddRoute(cmd.Context(), id, r)
	if err != nil {
		return err
	}
	logger.Info().Int("vehicle", id).Int("route", added.ID).Msg("route added")
	printRoutes(cmd.OutOrStdout(), []fleet.Route{*added})
	return nil
}

func advanceRoute(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	v, err := newClient().AdvanceRoute(cmd.Context(), id)
	if err != nil {
		return err
	}
	logger.Info().Int("vehicle", id).Int("routeIndex", v.CurrentRouteIndex).Msg("route advanced")
	fmt.Fprintf(cmd.OutOrStdout(), "Shuttle %s next route: %s\n", fleet.Label(id), routeText(v.NextRoute))
	return nil
}
