package style

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMerge(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want string
	}{
		{"empty", nil, ""},
		{"later padding wins", []string{"p-1", "p-2"}, "p-2"},
		{"shorthand overrides axis", []string{"px-2 py-1", "p-4"}, "p-4"},
		{"axis after shorthand is kept", []string{"p-4", "px-2"}, "p-4 px-2"},
		{"axis overrides side", []string{"pl-3", "px-1"}, "px-1"},
		{"side after axis is kept", []string{"px-1", "pl-3"}, "px-1 pl-3"},
		{"font size and color are independent", []string{"text-sm text-teal-800", "text-lg"}, "text-teal-800 text-lg"},
		{"text color replaced", []string{"text-teal-800", "text-red-500"}, "text-red-500"},
		{"text align is its own group", []string{"text-center text-sm"}, "text-center text-sm"},
		{"font weight vs family", []string{"font-outfit font-normal", "font-bold"}, "font-outfit font-bold"},
		{"display", []string{"flex", "hidden"}, "hidden"},
		{"position", []string{"relative", "absolute"}, "absolute"},
		{"flex direction vs display", []string{"flex flex-col", "flex-row"}, "flex flex-row"},
		{"variants partition groups", []string{"p-2 md:p-4", "p-3"}, "md:p-4 p-3"},
		{"arbitrary values", []string{"h-[297mm] w-[210mm]", "h-full"}, "w-[210mm] h-full"},
		{"unknown classes pass through", []string{"my-widget", "other"}, "my-widget other"},
		{"duplicate unknown collapsed", []string{"card", "card"}, "card"},
		{"whitespace normalised", []string{"  p-1   m-2 ", ""}, "p-1 m-2"},
		{"decoration", []string{"underline", "no-underline"}, "no-underline"},
		{"arbitrary text color", []string{"text-sm", "text-[#abcdef]"}, "text-sm text-[#abcdef]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Merge(tt.in...))
		})
	}
}

func TestMergeComputesSameStyleAsLastClass(t *testing.T) {
	c := NewConverter(12)
	assert.Equal(t, c.Convert("p-2"), c.Convert(Merge("p-1 p-2")))
	assert.Equal(t, c.Convert("p-2"), c.Convert("p-1 p-2"))
}
