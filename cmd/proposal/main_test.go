package main

import (
	"reflect"
	"testing"
)

func TestRewriteBlockLookupArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "no args",
			in:   []string{"proposal"},
			want: []string{"proposal"},
		},
		{
			name: "block id first token",
			in:   []string{"proposal", "blk-abc123"},
			want: []string{"proposal", "blocks", "show", "blk-abc123"},
		},
		{
			name: "block id after value flag",
			in:   []string{"proposal", "--dir", "./ws", "blk-abc123"},
			want: []string{"proposal", "--dir", "./ws", "blocks", "show", "blk-abc123"},
		},
		{
			name: "block id after equals flag",
			in:   []string{"proposal", "--backend=bolt", "blk-abc123"},
			want: []string{"proposal", "--backend=bolt", "blocks", "show", "blk-abc123"},
		},
		{
			name: "block id after bool flag",
			in:   []string{"proposal", "--pretty", "blk-abc123"},
			want: []string{"proposal", "--pretty", "blocks", "show", "blk-abc123"},
		},
		{
			name: "block id after double dash",
			in:   []string{"proposal", "--", "blk-abc123"},
			want: []string{"proposal", "--", "blocks", "show", "blk-abc123"},
		},
		{
			name: "subcommand not rewritten",
			in:   []string{"proposal", "blocks", "show", "blk-abc123"},
			want: []string{"proposal", "blocks", "show", "blk-abc123"},
		},
		{
			name: "bare prefix not rewritten",
			in:   []string{"proposal", "blk-"},
			want: []string{"proposal", "blk-"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := rewriteBlockLookupArgs(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}
