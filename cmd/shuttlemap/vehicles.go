package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/babcock-shuttle/shuttlemap/internal/fleet"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle     = lipgloss.NewStyle().Padding(0, 1)
	activeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#22C55E"))
	inactiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
)

var vehicleFlags struct {
	vehicleType string
	model       string
	color       string
	driver      string
	plate       string
	active      bool
}

var listFlags struct {
	search     string
	activeOnly bool
}

// vehiclesCmd manages shuttles on the fleet backend
var vehiclesCmd = &cobra.Command{
	Use:   "vehicles",
	Short: "List and manage shuttles on the fleet backend",
}

var vehiclesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all shuttles",
	Args:  cobra.NoArgs,
	RunE:  listVehicles,
}

var vehiclesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Register a new shuttle",
	Long: `Registers a new shuttle.

Example:
  shuttlemap vehicles create --type Bus --model Coaster --color Blue \
    --driver "Ada Obi" --plate LAG-123-XY --active`,
	Args: cobra.NoArgs,
	RunE: createVehicle,
}

var vehiclesUpdateCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Change a shuttle's details; only the given flags are changed",
	Args:  cobra.ExactArgs(1),
	RunE:  updateVehicle,
}

var vehiclesDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Remove a shuttle",
	Args:  cobra.ExactArgs(1),
	RunE:  deleteVehicle,
}

func init() {
	for _, c := range []*cobra.Command{vehiclesCreateCmd, vehiclesUpdateCmd} {
		c.Flags().StringVar(&vehicleFlags.vehicleType, "type", "", "Vehicle type, e.g. Bus")
		c.Flags().StringVar(&vehicleFlags.model, "model", "", "Vehicle model")
		c.Flags().StringVar(&vehicleFlags.color, "color", "", "Body color: White, Blue, Green, Yellow, Black, Silver, Red or Orange")
		c.Flags().StringVar(&vehicleFlags.driver, "driver", "", "Driver name")
		c.Flags().StringVar(&vehicleFlags.plate, "plate", "", "Plate number")
		c.Flags().BoolVar(&vehicleFlags.active, "active", false, "Whether the shuttle is in service")
	}
	_ = vehiclesCreateCmd.MarkFlagRequired("plate")

	vehiclesListCmd.Flags().StringVarP(&listFlags.search, "search", "s", "", "Only list shuttles whose driver or plate contains this text")
	vehiclesListCmd.Flags().BoolVar(&listFlags.activeOnly, "active", false, "Only list shuttles in service")

	vehiclesCmd.AddCommand(vehiclesListCmd)
	vehiclesCmd.AddCommand(vehiclesCreateCmd)
	vehiclesCmd.AddCommand(vehiclesUpdateCmd)
	vehiclesCmd.AddCommand(vehiclesDeleteCmd)
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

func statusText(active bool) string {
	if active {
		return activeStyle.Render("Active")
	}
	return inactiveStyle.Render("Inactive")
}

func routeText(r *fleet.Route) string {
	if r == nil {
		return "-"
	}
	return fmt.Sprintf("%s → %s (~%d min, %s km)", r.Origin, r.Destination, r.EtaMinutes,
		strconv.FormatFloat(r.DistanceKm, 'f', -1, 64))
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func printVehicles(w io.Writer, vehicles []fleet.Vehicle) {
	if len(vehicles) == 0 {
		fmt.Fprintln(w, "No shuttles registered.")
		return
	}
	t := newTable("ID", "Shuttle", "Type", "Model", "Color", "Driver", "Plate", "Status", "Next route")
	for _, v := range vehicles {
		t.Row(
			strconv.Itoa(v.ID),
			"Shuttle "+fleet.Label(v.ID),
			v.VehicleType,
			v.Model,
			v.Color,
			v.DriverName,
			v.PlateNumber,
			statusText(v.Status),
			routeText(v.NextRoute),
		)
	}
	fmt.Fprintln(w, t.Render())
}

// filterVehicles keeps vehicles whose driver or plate contains search,
// ignoring case, and with activeOnly only those in service.
func filterVehicles(vehicles []fleet.Vehicle, search string, activeOnly bool) []fleet.Vehicle {
	search = strings.ToLower(search)
	var out []fleet.Vehicle
	for _, v := range vehicles {
		if activeOnly && !v.Status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(v.DriverName), search) &&
			!strings.Contains(strings.ToLower(v.PlateNumber), search) {
			continue
		}
		out = append(out, v)
	}
	return out
}

func listVehicles(cmd *cobra.Command, args []string) error {
	vehicles, err := newClient().ListVehicles(cmd.Context())
	if err != nil {
		return err
	}
	printVehicles(cmd.OutOrStdout(), filterVehicles(vehicles, listFlags.search, listFlags.activeOnly))
	return nil
}

func createVehicle(cmd *cobra.Command, args []string) error {
	v := fleet.Vehicle{
		VehicleType: vehicleFlags.vehicleType,
		Model:       vehicleFlags.model,
		Color:       vehicleFlags.color,
		DriverName:  vehicleFlags.driver,
		PlateNumber: vehicleFlags.plate,
		Status:      vehicleFlags.active,
	}
	created, err := newClient().CreateVehicle(cmd.Context(), v)
	if err != nil {
		return err
	}
	logger.Info().Int("id", created.ID).Str("plate", created.PlateNumber).Msg("shuttle created")
	printVehicles(cmd.OutOrStdout(), []fleet.Vehicle{*created})
	return nil
}

func updateVehicle(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	client := newClient()
	v, err := client.GetVehicle(cmd.Context(), id)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("type") {
		v.VehicleType = vehicleFlags.vehicleType
	}
	if flags.Changed("model") {
		v.Model = vehicleFlags.model
	}
	if flags.Changed("color") {
		v.Color = vehicleFlags.color
	}
	if flags.Changed("driver") {
		v.DriverName = vehicleFlags.driver
	}
	if flags.Changed("plate") {
		v.PlateNumber = vehicleFlags.plate
	}
	if flags.Changed("active") {
		v.Status = vehicleFlags.active
	}

	updated, err := client.UpdateVehicle(cmd.Context(), id, *v)
	if err != nil {
		return err
	}
	logger.Info().Int("id", id).Msg("shuttle updated")
	printVehicles(cmd.OutOrStdout(), []fleet.Vehicle{*updated})
	return nil
}

func deleteVehicle(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	if err := newClient().DeleteVehicle(cmd.Context(), id); err != nil {
		return err
	}
	logger.Info().Int("id", id).Msg("shuttle deleted")
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted shuttle %s.\n", fleet.Label(id))
	return nil
}
