package calendar

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/username/daily-harmony/pkg/dateutil"
)

// termNames maps normalized converter names (hanja in either script, or
// romanized tokens with underscores removed) to Korean term names.
var termNames = map[string]string{
	"立春": "입춘", "LICHUN": "입춘",
	"雨水": "우수", "YUSHUI": "우수",
	"驚蟄": "경칩", "惊蛰": "경칩", "JINGZHE": "경칩",
	"春分": "춘분", "CHUNFEN": "춘분",
	"淸明": "청명", "清明": "청명", "QINGMING": "청명",
	"穀雨": "곡우", "谷雨": "곡우", "GUYU": "곡우",
	"立夏": "입하", "LIXIA": "입하",
	"小滿": "소만", "小满": "소만", "XIAOMAN": "소만",
	"芒種": "망종", "芒种": "망종", "MANGZHONG": "망종",
	"夏至": "하지", "XIAZHI": "하지",
	"小暑": "소서", "XIAOSHU": "소서",
	"大暑": "대서", "DASHU": "대서",
	"立秋": "입추", "LIQIU": "입추",
	"處暑": "처서", "处暑": "처서", "CHUSHU": "처서",
	"白露": "백로", "BAILU": "백로",
	"秋分": "추분", "QIUFEN": "추분",
	"寒露": "한로", "HANLU": "한로",
	"霜降": "상강", "SHUANGJIANG": "상강",
	"立冬": "입동", "LIDONG": "입동",
	"小雪": "소설", "XIAOXUE": "소설",
	"大雪": "대설", "DAXUE": "대설",
	"冬至": "동지", "DONGZHI": "동지",
	"小寒": "소한", "XIAOHAN": "소한",
	"大寒": "대한", "DAHAN": "대한",
}

// NormalizeTermName maps a converter's solar-term name to its Korean name.
// Unknown names are returned unchanged.
func NormalizeTermName(raw string) string {
	key := strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(raw)), "_", "")
	if name, ok := termNames[key]; ok {
		return name
	}
	return raw
}

// SolarTermResolver computes the solar terms falling in a year
type SolarTermResolver struct {
	converter Converter
	logger    *zap.Logger
}

// NewSolarTermResolver creates a new SolarTermResolver
func NewSolarTermResolver(converter Converter, logger *zap.Logger) *SolarTermResolver {
	return &SolarTermResolver{
		converter: converter,
		logger:    logger,
	}
}

// SolarTermsOfYear returns the solar terms of the given Gregorian year
func (sr *SolarTermResolver) SolarTermsOfYear(year int) (SolarTerms, error) {
	table, err := sr.converter.SolarTermsOfYear(year)
	if err != nil {
		return nil, fmt.Errorf("failed to load solar terms for %d: %w", year, err)
	}

	terms := make(SolarTerms, 24)
	for date, raw := range table {
		if date.Year() != year {
			continue
		}

		key := dateutil.ISODate(date)
		name := NormalizeTermName(raw)
		if existing, ok := terms[key]; ok {
			sr.logger.Warn("Two solar terms on one date",
				zap.String("date", key),
				zap.String("kept", existing),
				zap.String("dropped", name))
			continue
		}
		if name == raw {
			sr.logger.Debug("Unrecognized solar term name", zap.String("name", raw))
		}
		terms[key] = name
	}

	return terms, nil
}

// ComputedSource derives holidays and solar terms from the lunar converter
type ComputedSource struct {
	*HolidayResolver
	*SolarTermResolver
}

// NewComputedSource creates a Source backed by the given converter
func NewComputedSource(converter Converter, logger *zap.Logger) *ComputedSource {
	return &ComputedSource{
		HolidayResolver:   NewHolidayResolver(converter, logger),
		SolarTermResolver: NewSolarTermResolver(converter, logger),
	}
}
