package main

import (
	"github.com/spf13/cobra"

	"github.com/ManakiYoshihara/GAS-con-test/event"
)

var edit event.EditEvent

// editCmd replays a single-cell edit, such as ticking the report checkbox.
var editCmd = &cobra.Command{
	Use:     "edit",
	Short:   "Handle a cell edit on a store",
	Example: `  gascon edit --store <main-id> --row 5 --col 8 --value TRUE`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return handle(edit)
	},
}

var submitStore string

// submitCmd replays a form submission; the answers follow in column order.
var submitCmd = &cobra.Command{
	Use:   "submit --store <id> answer...",
	Short: "Handle a form submission",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return handle(event.SubmitEvent{StoreID: submitStore, Values: args})
	},
}

func init() {
	editCmd.Flags().StringVar(&edit.StoreID, "store", "", "File-store id of the edited workbook (required)")
	editCmd.Flags().StringVar(&edit.Table, "table", "", "Edited table; empty means the first")
	editCmd.Flags().IntVar(&edit.Row, "row", 0, "1-based row of the edit (required)")
	editCmd.Flags().IntVar(&edit.Column, "col", 0, "1-based column of the edit (required)")
	editCmd.Flags().StringVar(&edit.Value, "value", "TRUE", "New cell value")
	editCmd.MarkFlagRequired("store")
	editCmd.MarkFlagRequired("row")
	editCmd.MarkFlagRequired("col")

	submitCmd.Flags().StringVar(&submitStore, "store", "", "File-store id of the responses workbook (required)")
	submitCmd.MarkFlagRequired("store")
}

func handle(ev event.Event) error {
	o, closeDrive, err := openOrchestrator()
	if err != nil {
		return err
	}
	defer closeDrive()

	ctx, cancel := commandContext()
	defer cancel()
	return o.Handle(ctx, ev)
}
