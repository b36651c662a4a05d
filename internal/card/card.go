// Package card implements a one-off client card: a console form capturing
// a single client's details with bounded input, printed back on completion.
// Cards are not persisted and are unrelated to the directory store.
package card

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/smileynet/rolodex/internal/record"
)

// AddressCap is the maximum number of address characters kept.
const AddressCap = 49

// Card is one client card.
type Card struct {
	LastName  string
	FirstName string
	Age       int
	Phone     int64
	Address   string
}

// Prompt reads a card from r field by field, writing prompts to w. Text
// input beyond each field's capacity is truncated, never written past it.
func Prompt(r io.Reader, w io.Writer) (Card, error) {
	sc := bufio.NewScanner(r)
	var c Card

	last, err := promptLine(sc, w, "Last name: ")
	if err != nil {
		return Card{}, err
	}
	c.LastName = record.Truncate(last)

	first, err := promptLine(sc, w, "First name: ")
	if err != nil {
		return Card{}, err
	}
	c.FirstName = record.Truncate(first)

	ageText, err := promptLine(sc, w, "Age: ")
	if err != nil {
		return Card{}, err
	}
	c.Age, err = strconv.Atoi(strings.TrimSpace(ageText))
	if err != nil {
		return Card{}, fmt.Errorf("card: invalid age %q", ageText)
	}

	phoneText, err := promptLine(sc, w, "Phone: ")
	if err != nil {
		return Card{}, err
	}
	c.Phone, err = strconv.ParseInt(strings.TrimSpace(phoneText), 10, 64)
	if err != nil {
		return Card{}, fmt.Errorf("card: invalid phone %q", phoneText)
	}

	addr, err := promptLine(sc, w, "Address: ")
	if err != nil {
		return Card{}, err
	}
	if len(addr) > AddressCap {
		addr = addr[:AddressCap]
	}
	c.Address = addr

	return c, nil
}

// promptLine writes one prompt and reads one line of input.
func promptLine(sc *bufio.Scanner, w io.Writer, label string) (string, error) {
	_, _ = fmt.Fprint(w, label)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", fmt.Errorf("card: reading input: %w", err)
		}
		return "", fmt.Errorf("card: input ended before %q", strings.TrimSuffix(label, ": "))
	}
	return sc.Text(), nil
}

var labelStyle = lipgloss.NewStyle().Bold(true)

// Render returns the card as a single display block with styled labels.
func (c Card) Render() string {
	var b strings.Builder
	rows := []struct {
		label, value string
	}{
		{"Last name", c.LastName},
		{"First name", c.FirstName},
		{"Age", strconv.Itoa(c.Age)},
		{"Phone", strconv.FormatInt(c.Phone, 10)},
		{"Address", c.Address},
	}
	for _, row := range rows {
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render(row.label+":"), row.value)
	}
	return b.String()
}
