package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Administrative operations on the vector store",
}

var adminInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show collection status and point count",
	RunE:  runAdminInfo,
}

var adminRemoveCmd = &cobra.Command{
	Use:   "remove <doc-id>",
	Short: "Remove a document's chunks and metadata",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdminRemove,
}

func init() {
	adminCmd.AddCommand(adminInfoCmd)
	adminCmd.AddCommand(adminRemoveCmd)
}

func runAdminInfo(cmd *cobra.Command, _ []string) error {
	a, err := buildApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	info, err := a.vectors.CollectionInfo(cmd.Context())
	if err != nil {
		return fmt.Errorf("fetching collection info: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "collection: %s\npoints: %d\ndense size: %d\n",
		info.Name, info.PointCount, info.DenseSize)
	return nil
}

func runAdminRemove(cmd *cobra.Command, args []string) error {
	a, err := buildApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.engine.Remove(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("removing document: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", args[0])
	return nil
}
