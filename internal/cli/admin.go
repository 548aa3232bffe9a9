package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/thedittmer/briefly/internal/models"
)

func itemFlags(cmd *cobra.Command) {
	cmd.Flags().String("name", "", "Item name")
	cmd.Flags().String("serial-number", "", "Serial number")
	cmd.Flags().String("provider", "", "Provider")
	cmd.Flags().String("category", "", "Category")
	cmd.Flags().Float64("price", 0, "Price")
}

func itemFromFlags(cmd *cobra.Command) models.Item {
	flags := cmd.Flags()
	var item models.Item
	item.Name, _ = flags.GetString("name")
	item.SerialNumber, _ = flags.GetString("serial-number")
	item.Provider, _ = flags.GetString("provider")
	item.Category, _ = flags.GetString("category")
	item.Price, _ = flags.GetFloat64("price")
	return item
}

func newItemsCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items",
		Short: "Create, update and delete inventory items (admin)",
	}

	create := &cobra.Command{
		Use:   "create",
		Short: "Create an item",
		Args:  cobra.NoArgs,
	}
	itemFlags(create)
	create.RunE = withApp(v, func(cmd *cobra.Command, args []string, app *App) error {
		item, err := app.client.CreateItem(cmd.Context(), itemFromFlags(cmd))
		if err != nil {
			return app.failWithHint(err, "Error creating item.")
		}
		app.success(fmt.Sprintf("Item created successfully (id %s)", item.ID))
		return nil
	})

	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace an item's fields",
		Args:  cobra.ExactArgs(1),
	}
	itemFlags(update)
	update.RunE = withApp(v, func(cmd *cobra.Command, args []string, app *App) error {
		item := itemFromFlags(cmd)
		item.ID = args[0]
		if err := app.client.UpdateItem(cmd.Context(), item); err != nil {
			return app.failWithHint(err, "Error updating item.")
		}
		app.success("Item updated successfully")
		return nil
	})

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an item",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(v, func(cmd *cobra.Command, args []string, app *App) error {
			if err := app.client.DeleteItem(cmd.Context(), args[0]); err != nil {
				return app.failWithHint(err, "Error deleting item.")
			}
			app.success("Item deleted successfully")
			return nil
		}),
	}

	cmd.AddCommand(create, update, del)
	return cmd
}

func newUsersCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Delete users and change their roles (admin)",
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a user",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(v, func(cmd *cobra.Command, args []string, app *App) error {
			if err := app.client.DeleteUser(cmd.Context(), args[0]); err != nil {
				return app.failWithHint(err, "Error deleting user.")
			}
			app.success("User deleted successfully")
			return nil
		}),
	}

	role := &cobra.Command{
		Use:   "role <id> <role>",
		Short: "Change a user's role",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(v, func(cmd *cobra.Command, args []string, app *App) error {
			if err := app.client.UpdateUserRole(cmd.Context(), args[0], args[1]); err != nil {
				return app.failWithHint(err, "Error updating user role.")
			}
			app.success("User role updated successfully")
			return nil
		}),
	}

	cmd.AddCommand(del, role)
	return cmd
}

func newCSVCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "csv",
		Short: "Import and export the admin dashboard CSV",
	}

	importCmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Upload a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(v, func(cmd *cobra.Command, args []string, app *App) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("error opening %s: %w", args[0], err)
			}
			defer f.Close()

			msg, err := app.client.ImportCSV(cmd.Context(), filepath.Base(args[0]), f)
			if err != nil {
				return app.failWithHint(err, "Error uploading CSV.")
			}
			app.success(msg)
			return nil
		}),
	}

	exportCmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Download the CSV export into file",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(v, func(cmd *cobra.Command, args []string, app *App) error {
			path := args[0]
			tmp := path + ".part"

			f, err := os.Create(tmp)
			if err != nil {
				return fmt.Errorf("error creating %s: %w", tmp, err)
			}

			n, err := app.client.ExportCSV(cmd.Context(), f)
			if cerr := f.Close(); err == nil && cerr != nil {
				err = cerr
			}
			if err != nil {
				os.Remove(tmp)
				return app.failWithHint(err, "Error downloading CSV.")
			}
			if err := os.Rename(tmp, path); err != nil {
				os.Remove(tmp)
				return fmt.Errorf("error saving %s: %w", path, err)
			}

			app.log.Info("csv exported", zap.String("path", path), zap.Int64("bytes", n))
			app.success(fmt.Sprintf("Saved %d bytes to %s", n, path))
			return nil
		}),
	}

	cmd.AddCommand(importCmd, exportCmd)
	return cmd
}
