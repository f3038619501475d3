package status

import (
	"testing"

	"attendance-rebuilder/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestParse_OnTime(t *testing.T) {
	flags := Parse("On Time")
	assert.Equal(t, models.DeviationFlags{}, flags)
}

func TestParse_CanonicalPhrases(t *testing.T) {
	flags := Parse("Late Check-in, Leave Soon Break Out, Late Break In, Leave Soon Check Out")
	assert.True(t, flags.LateCheckIn)
	assert.True(t, flags.EarlyBreakOut)
	assert.True(t, flags.LateBreakIn)
	assert.True(t, flags.EarlyCheckOut)
	assert.False(t, flags.HasMissing)
}

// 同义写法兼容：两种策略的输出都能解析
func TestParse_SynonymousPhrases(t *testing.T) {
	flags := Parse("Check-in Late, Break Out Early, Break In Late, Check Out Early")
	assert.True(t, flags.LateCheckIn)
	assert.True(t, flags.EarlyBreakOut)
	assert.True(t, flags.LateBreakIn)
	assert.True(t, flags.EarlyCheckOut)
}

// 未限定的裸 "Leave Soon" 默认算签退早退
func TestParse_BareLeaveSoonDefaultsToCheckOut(t *testing.T) {
	flags := Parse("Leave Soon")
	assert.True(t, flags.EarlyCheckOut)
	assert.False(t, flags.EarlyBreakOut)
}

func TestParse_MissingBracketFlag(t *testing.T) {
	flags := Parse("On Time [Missing: Break Out, Break In]")
	assert.True(t, flags.HasMissing)
	assert.False(t, flags.LateCheckIn)
}

func TestExtractMissing_ShortCodes(t *testing.T) {
	got := ExtractMissing("On Time [Missing: Break Out, Break In]")
	assert.Equal(t, []string{"BTO", "BTI"}, got)

	got = ExtractMissing("Late Check-in [Missing: Check Out]")
	assert.Equal(t, []string{"CO"}, got)

	got = ExtractMissing("INVALID - No Check-In [Missing: Check In]")
	assert.Equal(t, []string{"CI"}, got)
}

func TestExtractMissing_UnknownNamePassesThrough(t *testing.T) {
	got := ExtractMissing("On Time [Missing: Lunch Out]")
	assert.Equal(t, []string{"Lunch Out"}, got)
}

// 畸形括号段：返回空列表而非报错
func TestExtractMissing_Malformed(t *testing.T) {
	assert.Nil(t, ExtractMissing("On Time"))
	assert.Nil(t, ExtractMissing("On Time [Missing: Break Out"))   // 无闭合
	assert.Nil(t, ExtractMissing("On Time [Mising: Break Out]"))   // 字面不符
	assert.Nil(t, ExtractMissing("On Time [Missing:]"))            // 空内容
	assert.Nil(t, ExtractMissing("On Time [Missing:  ,  , ]"))     // 仅分隔符
}

func TestToDeviationText(t *testing.T) {
	flags := models.DeviationFlags{LateCheckIn: true, EarlyCheckOut: true}

	assert.Equal(t, "Late", ToDeviationText(flags, models.FieldCheckIn))
	assert.Equal(t, "", ToDeviationText(flags, models.FieldBreakOut))
	assert.Equal(t, "", ToDeviationText(flags, models.FieldBreakIn))
	assert.Equal(t, "Early", ToDeviationText(flags, models.FieldCheckOut))
}

// 往返稳定性：规范标签集合经 Serialize→Parse 后完全还原
func TestRoundTripStability(t *testing.T) {
	cases := []struct {
		flags   models.DeviationFlags
		missing []models.TimestampField
	}{
		{models.DeviationFlags{}, nil},
		{models.DeviationFlags{LateCheckIn: true}, nil},
		{models.DeviationFlags{EarlyBreakOut: true, LateBreakIn: true}, nil},
		{models.DeviationFlags{LateCheckIn: true, EarlyBreakOut: true, LateBreakIn: true, EarlyCheckOut: true}, nil},
		{models.DeviationFlags{HasMissing: true}, []models.TimestampField{models.FieldBreakOut, models.FieldBreakIn}},
		{models.DeviationFlags{LateCheckIn: true, HasMissing: true}, []models.TimestampField{models.FieldCheckOut}},
	}

	for _, tc := range cases {
		s := Serialize(tc.flags, tc.missing)
		got := Parse(s)
		assert.Equal(t, tc.flags, got, "round trip failed for %q", s)
	}
}

// 序列化的缺失段能被 ExtractMissing 还原为短代码
func TestSerializeExtractMissing(t *testing.T) {
	s := Serialize(models.DeviationFlags{HasMissing: true},
		[]models.TimestampField{models.FieldBreakOut, models.FieldCheckOut})
	assert.Equal(t, "On Time [Missing: Break Out, Check Out]", s)
	assert.Equal(t, []string{"BTO", "CO"}, ExtractMissing(s))
}
