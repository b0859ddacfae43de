package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/ArthurCbn/photobot/internal/group"
	"github.com/ArthurCbn/photobot/internal/store"
	"github.com/spf13/cobra"
)

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "List or add groups",
}

var groupsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List groups in the order files are matched against them",
	Args:  cobra.NoArgs,
	RunE:  runGroupsList,
}

var groupsAddDateCmd = &cobra.Command{
	Use:   "add-date <name> <start> <end>",
	Short: "Add a date group covering start to end, both days included",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := group.NewDateGroup(args[0], "", args[1], args[2])
		if err != nil {
			return err
		}
		return appendGroup(g)
	},
}

var groupsAddCircleCmd = &cobra.Command{
	Use:   "add-circle <name> <lat> <lon> <radius-km>",
	Short: "Add a circular area group",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		var nums [3]float64
		for i, arg := range args[1:] {
			v, err := strconv.ParseFloat(arg, 64)
			if err != nil {
				return fmt.Errorf("invalid number %q", arg)
			}
			nums[i] = v
		}
		g, err := group.NewCircleGroup(args[0], "", nums[0], nums[1], nums[2])
		if err != nil {
			return err
		}
		return appendGroup(g)
	},
}

func init() {
	groupsCmd.AddCommand(groupsListCmd)
	groupsCmd.AddCommand(groupsAddDateCmd)
	groupsCmd.AddCommand(groupsAddCircleCmd)
}

func openStore() (*store.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return store.Open(cfg.GroupsFile), nil
}

func runGroupsList(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	groups, err := st.Load()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KIND\tNAME\tID\tDETAILS")
	for _, g := range group.Sort(groups) {
		b := g.Ident()
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", g.Kind(), b.DisplayName(), b.ID, describe(g))
	}
	return w.Flush()
}

func describe(g group.Group) string {
	_, size := group.SortKey(g)
	switch v := g.(type) {
	case group.DateGroup:
		return fmt.Sprintf("%s .. %s (%d days)", v.Start, v.End, int(size))
	case group.CircleGroup:
		return fmt.Sprintf("%.5f,%.5f r=%gkm (%.1f km2)", v.Center.Lat, v.Center.Lon, v.RadiusKm, size)
	case group.PolygonGroup:
		return fmt.Sprintf("%d points (%.1f km2)", len(v.Ring), size)
	default:
		return "unknown type, never matched"
	}
}

func appendGroup(g group.Group) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	added, err := st.Append(g)
	if err != nil {
		return err
	}
	if len(added) == 0 {
		fmt.Println("no new group: " + g.Ident().ID + " already exists")
		return nil
	}
	fmt.Printf("added %s group %s (%s) to %s\n", g.Kind(), g.Ident().DisplayName(), g.Ident().ID, st.Path())
	return nil
}
