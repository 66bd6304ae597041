package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/caixa/internal/cli"
	"github.com/Veraticus/caixa/internal/model"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"categorias", "cat"},
		Short:   "Manage categories",
		Example: `  # Create a category usable for both income and expenses
  caixa categories add aluguel --types receita,despesa

  # List the categories linked to DESPESA
  caixa categories list --type despesa

  # Unlink every type from a category
  caixa categories update 3 --types ""`,
	}

	cmd.AddCommand(addCategoryCmd())
	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(getCategoryCmd())
	cmd.AddCommand(updateCategoryCmd())
	cmd.AddCommand(deleteCategoryCmd())

	return cmd
}

func typeDescriptors(csv string) *[]model.TypeDescriptor {
	descriptors := []model.TypeDescriptor{}
	for _, name := range splitNames(csv) {
		descriptors = append(descriptors, model.TypeDescriptor{Name: name})
	}
	return &descriptors
}

func addCategoryCmd() *cobra.Command {
	var description, types string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Find or create a category",
		Long: `Find or create a category by its upper-cased name and description.

--types names the transaction types to link; missing types are created.
The list replaces any links the category already had.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			in := model.CategoryInput{Name: args[0]}
			if cmd.Flags().Changed("description") {
				in.Description = &description
			}
			if cmd.Flags().Changed("types") {
				in.Types = typeDescriptors(types)
			}

			category, err := a.categories.Store(cmd.Context(), in)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Categoria %s (%d)", category.Name, category.ID)))
			fmt.Fprintln(cmd.OutOrStdout(), cli.CategoryTable([]model.Category{*category}))
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "category description")
	cmd.Flags().StringVarP(&types, "types", "t", "", "comma-separated transaction type names")

	return cmd
}

func listCategoriesCmd() *cobra.Command {
	var typeName string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List categories with their types",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			var filter model.CategoryFilter
			if typeName != "" {
				typeID, err := resolveTypeID(ctx, a.store, typeName)
				if err != nil {
					return err
				}
				filter.TypeID = &typeID
			}

			categories, err := a.categories.Index(ctx, filter)
			if err != nil {
				return err
			}
			if len(categories) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatWarning("Nenhuma categoria encontrada"))
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.CategoryTable(categories))
			return nil
		},
	}

	cmd.Flags().StringVarP(&typeName, "type", "t", "", "only categories linked to this type (id or name)")

	return cmd
}

func getCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			category, err := a.categories.IndexByID(cmd.Context(), id)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.CategoryTable([]model.Category{*category}))
			return nil
		},
	}
}

func updateCategoryCmd() *cobra.Command {
	var name, description, types string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Rename, describe or relink a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var patch model.CategoryPatch
			if cmd.Flags().Changed("name") {
				patch.Name = &name
			}
			if cmd.Flags().Changed("description") {
				patch.Description = &description
			}
			if cmd.Flags().Changed("types") {
				patch.Types = typeDescriptors(types)
			}
			if patch.Name == nil && patch.Description == nil && patch.Types == nil {
				return fmt.Errorf("nothing to update: pass --name, --description or --types")
			}

			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			category, err := a.categories.Update(cmd.Context(), id, patch)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Categoria %d atualizada", category.ID)))
			fmt.Fprintln(cmd.OutOrStdout(), cli.CategoryTable([]model.Category{*category}))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVarP(&description, "description", "d", "", "new description, empty to clear")
	cmd.Flags().StringVarP(&types, "types", "t", "", "comma-separated type names replacing the current links")

	return cmd
}

func deleteCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a category; its transactions are kept uncategorized",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			removed, err := a.categories.Remove(cmd.Context(), id)
			if err != nil {
				return err
			}
			if removed == 0 {
				return fmt.Errorf("category %d not found", id)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Categoria %d removida", id)))
			return nil
		},
	}
}

func typesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "types",
		Aliases: []string{"tipos"},
		Short:   "Inspect transaction types",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List transaction types",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			types, err := a.categories.Types(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.TypeTable(types))
			return nil
		},
	})

	return cmd
}
