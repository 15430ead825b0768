// Package console drives the ingredient store from an interactive text menu.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jwulff/inventory-go/internal/storage"
)

// errInputClosed ends the menu when the input runs out mid-prompt.
var errInputClosed = errors.New("input closed")

// Menu is a numbered console menu over a store.
type Menu struct {
	store storage.Store
	in    *bufio.Scanner
	out   io.Writer
}

// NewMenu creates a menu reading choices from in and writing to out.
func NewMenu(store storage.Store, in io.Reader, out io.Writer) *Menu {
	return &Menu{
		store: store,
		in:    bufio.NewScanner(in),
		out:   out,
	}
}

// Run shows the menu until the user exits or the input ends. Store errors
// are printed and the loop continues.
func (m *Menu) Run(ctx context.Context) error {
	for {
		m.println("\n===== INVENTORY MENU =====")
		m.println("1. List Ingredients")
		m.println("2. Add Ingredient")
		m.println("3. Edit Ingredient")
		m.println("4. Delete Ingredient")
		m.println("5. Exit")

		choice, err := m.prompt("Enter your choice:")
		if err != nil {
			return m.finish(err)
		}

		switch choice {
		case "1":
			m.list(ctx)
		case "2":
			err = m.add(ctx)
		case "3":
			err = m.edit(ctx)
		case "4":
			err = m.delete(ctx)
		case "5":
			m.println("Exiting application.")
			return nil
		default:
			m.println("Invalid choice, please try again.")
		}
		if err != nil {
			return m.finish(err)
		}
	}
}

func (m *Menu) finish(err error) error {
	if errors.Is(err, errInputClosed) {
		m.println("\nInput closed, exiting.")
		return nil
	}
	return err
}

func (m *Menu) list(ctx context.Context) {
	m.println("\n--- Current Inventory ---")
	ingredients, err := m.store.ListIngredients(ctx)
	switch {
	case err != nil:
		m.printf("Error fetching ingredients: %v\n", err)
	case len(ingredients) == 0:
		m.println("No ingredients found.")
	default:
		for _, ing := range ingredients {
			m.printf("- %s (edited %s)\n", ing, ing.LastEdited.Local().Format("2006-01-02 15:04"))
		}
	}
	m.println("-------------------------")
}

func (m *Menu) add(ctx context.Context) error {
	m.println("\n--- Add New Ingredient ---")
	name, err := m.prompt("Enter ingredient name:")
	if err != nil {
		return err
	}
	quantity, err := m.promptQuantity("Enter quantity:")
	if err != nil {
		return err
	}
	unit, err := m.prompt("Enter unit:")
	if err != nil {
		return err
	}

	if err := m.store.AddIngredient(ctx, name, quantity, unit); err != nil {
		m.printf("Error adding ingredient: %v\n", err)
		return nil
	}
	m.printf("Successfully added/updated %s.\n", name)
	return nil
}

// edit overwrites the quantity of an existing ingredient and keeps its unit.
func (m *Menu) edit(ctx context.Context) error {
	m.println("\n--- Edit Ingredient Quantity ---")
	name, err := m.prompt("Enter the name of the ingredient to edit:")
	if err != nil {
		return err
	}

	current, err := m.store.GetIngredient(ctx, name)
	if err != nil {
		m.printf("Error updating ingredient: %v\n", err)
		return nil
	}

	quantity, err := m.promptQuantity(fmt.Sprintf("Enter the new quantity (currently %d):", current.Quantity))
	if err != nil {
		return err
	}

	if err := m.store.AddIngredient(ctx, name, quantity, current.Unit); err != nil {
		m.printf("Error updating ingredient: %v\n", err)
		return nil
	}
	m.printf("Successfully updated %s.\n", name)
	return nil
}

func (m *Menu) delete(ctx context.Context) error {
	m.println("\n--- Delete Ingredient ---")
	name, err := m.prompt("Enter the name of the ingredient to delete:")
	if err != nil {
		return err
	}

	if err := m.store.DeleteIngredient(ctx, name); err != nil {
		m.printf("Error deleting ingredient: %v\n", err)
		return nil
	}
	m.printf("Successfully deleted %s.\n", name)
	return nil
}

// promptQuantity asks until the answer parses as an unsigned 32-bit integer.
func (m *Menu) promptQuantity(question string) (uint32, error) {
	for {
		answer, err := m.prompt(question)
		if err != nil {
			return 0, err
		}
		n, err := strconv.ParseUint(answer, 10, 32)
		if err == nil {
			return uint32(n), nil
		}
		m.println("Invalid quantity. Please enter a number.")
	}
}

func (m *Menu) prompt(question string) (string, error) {
	m.println(question)
	if !m.in.Scan() {
		if err := m.in.Err(); err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		return "", errInputClosed
	}
	return strings.TrimSpace(m.in.Text()), nil
}

func (m *Menu) println(s string) {
	fmt.Fprintln(m.out, s)
}

func (m *Menu) printf(format string, args ...any) {
	fmt.Fprintf(m.out, format, args...)
}
