package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/zjrosen/marquee/internal/catalog/domain"
	"github.com/zjrosen/marquee/internal/catalog/storage"
	"github.com/zjrosen/marquee/internal/presentation"
	"github.com/zjrosen/marquee/internal/pubsub"
)

func newPersonCmds(app *session) []*cobra.Command {
	return []*cobra.Command{
		newPersonListCmd(app),
		newPersonAddCmd(app),
		newPersonUpdateCmd(app),
		newPersonDestroyCmd(app),
	}
}

func newPersonListCmd(app *session) *cobra.Command {
	return &cobra.Command{
		Use:   "person:list",
		Short: "List all persons",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return app.out.FormatPersons(presentation.FromDomainPersons(app.catalog.People().All()))
		},
	}
}

func newPersonAddCmd(app *session) *cobra.Command {
	var id, name string

	cmd := &cobra.Command{
		Use:   "person:add",
		Short: "Create a person",
		Long: `Create a person. The id defaults to the next free person id.

Examples:
  marquee person:add --name "Sofia Coppola"
  marquee person:add --id 42 --name "Agnès Varda"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			people := app.catalog.People()
			if !cmd.Flags().Changed("id") {
				id = strconv.Itoa(people.NextID())
			}

			p, err := people.Add(ctx, domain.PersonSlots{PersonID: id, Name: name})
			if err != nil {
				return app.report(err)
			}
			if err := app.save(ctx); err != nil {
				return err
			}
			return app.out.FormatPersons([]presentation.PersonDTO{presentation.FromDomainPerson(p)})
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "person id (default: next free id)")
	cmd.Flags().StringVar(&name, "name", "", "full name")
	return cmd
}

func newPersonUpdateCmd(app *session) *cobra.Command {
	var (
		id   int
		name string
	)

	cmd := &cobra.Command{
		Use:   "person:update",
		Short: "Change a person's name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			upd := storage.PersonUpdate{PersonID: id}
			if cmd.Flags().Changed("name") {
				upd.Name = &name
			}

			if err := app.catalog.People().Update(ctx, upd); err != nil {
				return app.report(err)
			}
			if err := app.save(ctx); err != nil {
				return err
			}
			p, _ := app.catalog.People().Get(id)
			return app.out.FormatPersons([]presentation.PersonDTO{presentation.FromDomainPerson(p)})
		},
	}

	cmd.Flags().IntVar(&id, "id", 0, "id of the person to change")
	cmd.Flags().StringVar(&name, "name", "", "new full name")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func newPersonDestroyCmd(app *session) *cobra.Command {
	var id int

	cmd := &cobra.Command{
		Use:   "person:destroy",
		Short: "Delete a person",
		Long: `Delete a person.

Movies the person directed are deleted with them and the person is removed
from every cast. With the strict-references flag enabled, a person who is
still referenced by a movie is not deleted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			changes := app.catalog.Subscribe(ctx)

			if err := app.catalog.DestroyPerson(ctx, id); err != nil {
				return app.report(err)
			}
			if err := app.save(ctx); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, ev := range pubsub.Drain(changes) {
				if ev.Payload.Kind != storage.KindMovie {
					continue
				}
				var err error
				switch ev.Type {
				case pubsub.DeletedEvent:
					_, err = fmt.Fprintf(out, "Movie %d deleted (directed by person %d).\n", ev.Payload.ID, id)
				case pubsub.UpdatedEvent:
					_, err = fmt.Fprintf(out, "Movie %d: person %d removed from the cast.\n", ev.Payload.ID, id)
				}
				if err != nil {
					return err
				}
			}
			_, err := fmt.Fprintf(out, "Person %d deleted.\n", id)
			return err
		},
	}

	cmd.Flags().IntVar(&id, "id", 0, "id of the person to delete")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}
