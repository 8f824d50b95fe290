package hwp5

import (
	"reflect"
	"testing"

	"github.com/dawoolim/hwptext/internal/hwptest"
)

func TestSplitParaText(t *testing.T) {
	cat := func(parts ...[]byte) []byte {
		var b []byte
		for _, p := range parts {
			b = append(b, p...)
		}
		return b
	}

	tests := []struct {
		name string
		data []byte
		want []textSegment
	}{
		{
			name: "plain",
			data: hwptest.UTF16("안녕하세요"),
			want: []textSegment{{text: "안녕하세요"}},
		},
		{
			name: "empty",
			data: nil,
			want: []textSegment{{}},
		},
		{
			name: "tab is inline",
			data: cat(hwptest.UTF16("a"), hwptest.Control(9), hwptest.UTF16("b")),
			want: []textSegment{{text: "a\tb"}},
		},
		{
			name: "line break",
			data: hwptest.UTF16("한 줄\n둘째 줄"),
			want: []textSegment{{text: "한 줄\n둘째 줄"}},
		},
		{
			name: "extend splits",
			data: cat(hwptest.UTF16("표"), hwptest.Control(11), hwptest.UTF16("뒤")),
			want: []textSegment{{text: "표", ctrl: true}, {text: "뒤"}},
		},
		{
			name: "leading extend",
			data: cat(hwptest.Control(11), hwptest.UTF16("뒤")),
			want: []textSegment{{ctrl: true}, {text: "뒤"}},
		},
		{
			name: "two extends back to back",
			data: cat(hwptest.Control(16), hwptest.Control(17)),
			want: []textSegment{{ctrl: true}, {ctrl: true}, {}},
		},
		{
			name: "char control substitutions",
			data: cat(hwptest.UTF16("a"), le16(24), hwptest.UTF16("b"), le16(30), le16(31), hwptest.UTF16("c")),
			want: []textSegment{{text: "a-b  c"}},
		},
		{
			name: "para break dropped",
			data: cat(hwptest.UTF16("끝"), le16(13)),
			want: []textSegment{{text: "끝"}},
		},
		{
			name: "field markers skipped",
			data: cat(hwptest.Control(3), hwptest.UTF16("이름"), hwptest.Control(4)),
			want: []textSegment{{ctrl: true}, {text: "이름"}},
		},
		{
			name: "odd trailing byte ignored",
			data: append(hwptest.UTF16("ab"), 0x41),
			want: []textSegment{{text: "ab"}},
		},
		{
			name: "truncated control at end",
			data: cat(hwptest.UTF16("a"), hwptest.Control(11)[:6]),
			want: []textSegment{{text: "a", ctrl: true}, {}},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := splitParaText(tc.data)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func le16(v uint16) []byte {
	return []byte{byte(v), byte(v >> 8)}
}
