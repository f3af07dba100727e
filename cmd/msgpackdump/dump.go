package main

import (
	"bytes"
	"encoding/hex"
	stderrors "errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/clockworklabs/SpacetimeDB/crates/msgpack-go/pkg/msgpack"
)

type options struct {
	hex    bool
	color  bool
	config *msgpack.Config
}

type palette struct {
	header lipgloss.Style
	kind   lipgloss.Style
	scalar lipgloss.Style
	key    lipgloss.Style
	yes    lipgloss.Style
	no     lipgloss.Style
}

func newPalette(color bool) palette {
	if !color {
		plain := lipgloss.NewStyle()
		return palette{plain, plain, plain, plain, plain, plain}
	}
	return palette{
		header: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA")).Background(lipgloss.Color("#7D56F4")).Padding(0, 1),
		kind:   lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB")),
		scalar: lipgloss.NewStyle().Foreground(lipgloss.Color("#98FB98")),
		key:    lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700")),
		yes:    lipgloss.NewStyle().Foreground(lipgloss.Color("#90EE90")),
		no:     lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")),
	}
}

// run prints every document in in as a tree, followed by whether
// re-encoding it reproduces the input bytes.
func run(in io.Reader, out io.Writer, opts options) error {
	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	if opts.hex {
		data, err = hex.DecodeString(strings.Join(strings.Fields(string(data)), ""))
		if err != nil {
			return fmt.Errorf("decode hex: %w", err)
		}
	}

	d := &dumper{out: out, p: newPalette(opts.color)}
	r := msgpack.NewReader(bytes.NewReader(data), opts.config)
	for doc := 0; ; doc++ {
		start := r.BytesRead()
		v, err := r.ReadValue()
		if stderrors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("document %d at offset %d: %w", doc, start, err)
		}
		raw := data[start:r.BytesRead()]

		fmt.Fprintln(out, d.p.header.Render(fmt.Sprintf("document %d (%d bytes)", doc, len(raw))))
		d.value(v, 0)

		again, err := msgpack.MarshalWithConfig(v, opts.config)
		if err != nil {
			return fmt.Errorf("re-encode document %d: %w", doc, err)
		}
		if bytes.Equal(raw, again) {
			fmt.Fprintf(out, "canonical: %s\n", d.p.yes.Render("yes"))
		} else {
			fmt.Fprintf(out, "canonical: %s (%d bytes re-encoded)\n", d.p.no.Render("no"), len(again))
		}
	}
}

type dumper struct {
	out io.Writer
	p   palette
}

func (d *dumper) value(v msgpack.Value, depth int) {
	pad := strings.Repeat("  ", depth)
	switch v := v.(type) {
	case msgpack.Array:
		fmt.Fprintf(d.out, "%s%s\n", pad, d.p.kind.Render(fmt.Sprintf("array[%d]", len(v))))
		for _, el := range v {
			d.value(el, depth+1)
		}
	case msgpack.Map:
		fmt.Fprintf(d.out, "%s%s\n", pad, d.p.kind.Render(fmt.Sprintf("map[%d]", len(v))))
		for _, e := range v {
			if msgpack.IsArray(e.Key) || msgpack.IsMap(e.Key) {
				fmt.Fprintf(d.out, "%s  %s\n", pad, d.p.key.Render("key:"))
				d.value(e.Key, depth+2)
				fmt.Fprintf(d.out, "%s  %s\n", pad, d.p.key.Render("value:"))
			} else {
				fmt.Fprintf(d.out, "%s  %s\n", pad, d.p.key.Render(e.Key.String()+":"))
			}
			d.value(e.Val, depth+2)
		}
	case msgpack.Nil, msgpack.Bool:
		fmt.Fprintf(d.out, "%s%s\n", pad, d.p.kind.Render(v.String()))
	default:
		fmt.Fprintf(d.out, "%s%s %s\n", pad, d.p.kind.Render(msgpack.KindOf(v).String()), d.p.scalar.Render(v.String()))
	}
}
