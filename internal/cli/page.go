package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"liveeditor/internal/app"
	"liveeditor/internal/domain"
)

func newPageCmd(opts *Options) *cobra.Command {
	cmd := &cobra.Command{Use: "page", Aliases: []string{"pages"}, Short: "Inspect and rearrange pages"}
	cmd.AddCommand(newPageListCmd(opts))
	cmd.AddCommand(newPageComponentsCmd(opts))
	cmd.AddCommand(newPageMoveCmd(opts))
	cmd.AddCommand(newPageDragCmd(opts))
	return cmd
}

func newPageListCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List pages and static pages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				return writeOut(cmd, opts, map[string]any{
					"activeTheme": a.Editor.ActiveTheme(),
					"pages":       a.Editor.PageNames(),
					"staticPages": a.Static.Slugs(),
				})
			})
		},
	}
}

func newPageComponentsCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "components [page]",
		Short: "List a page's components in order",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				page := ""
				if len(args) == 1 {
					page = args[0]
				}
				return writeOut(cmd, opts, a.Components.List(page))
			})
		},
	}
}

func newPageMoveCmd(opts *Options) *cobra.Command {
	var page string
	cmd := &cobra.Command{
		Use:   "move <component-id> <to>",
		Short: "Move a component to an index of the list without it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			to, err := strconv.Atoi(args[1])
			if err != nil {
				return writeErr(cmd, fmt.Errorf("invalid index %q", args[1]))
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				list, err := a.Components.MoveByID(ctx, page, args[0], to)
				if err != nil {
					return err
				}
				return writeOut(cmd, opts, list)
			})
		},
	}
	cmd.Flags().StringVar(&page, "page", "", "Page name (default: homepage)")
	return cmd
}

func newPageDragCmd(opts *Options) *cobra.Command {
	var (
		page, componentType, zones, target string
		y                                  float64
		cancel                             bool
	)
	cmd := &cobra.Command{
		Use:   "drag [component-id]",
		Short: "Drop an existing component, or a palette item with --type, at pointer --y",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			op := domain.DragOperation{TargetComponentID: target}
			switch {
			case componentType != "":
				t := domain.ComponentType(componentType)
				op.SourceID = domain.PaletteID(t)
				op.Palette = &domain.PaletteItem{ComponentType: t}
			case len(args) == 1:
				op.SourceID = args[0]
			default:
				return writeErr(cmd, fmt.Errorf("component id or --type is required"))
			}
			hovered := []domain.ZoneKey{domain.RootZone}
			for _, z := range strings.Split(zones, ",") {
				if z = strings.TrimSpace(z); z != "" {
					hovered = append(hovered, domain.ZoneKey(z))
				}
			}

			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				if page != "" {
					a.Editor.SetCurrentPage(page)
				}
				pointer := domain.Point{Y: y}
				if _, err := a.Drag.OnDragStart(op); err != nil {
					return err
				}
				if _, err := a.Drag.OnDragMove(pointer, hovered...); err != nil {
					return err
				}
				op.Canceled = cancel
				out, err := a.Drag.OnDragEnd(ctx, op, pointer)
				if err != nil {
					return err
				}
				return writeOut(cmd, opts, out)
			})
		},
	}
	cmd.Flags().StringVar(&page, "page", "", "Page to drag on (default: homepage)")
	cmd.Flags().StringVar(&componentType, "type", "", "Palette component type to insert")
	cmd.Flags().Float64Var(&y, "y", 0, "Pointer Y at drop")
	cmd.Flags().StringVar(&zones, "zones", "", "Comma-separated zone keys (areaId:zoneName) under the pointer, besides root")
	cmd.Flags().StringVar(&target, "target", "", "Resolve against this component's midpoint")
	cmd.Flags().BoolVar(&cancel, "cancel", false, "Abort the gesture")
	return cmd
}
