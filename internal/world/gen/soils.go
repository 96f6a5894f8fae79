package gen

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/annel0/blockworld/internal/world/block"
)

// Interval - замкнутый диапазон значения условия
type Interval struct {
	Lo, Hi float64
}

// distance - расстояние от v до интервала (0 внутри)
func (i Interval) distance(v float64) float64 {
	switch {
	case v < i.Lo:
		return i.Lo - v
	case v > i.Hi:
		return v - i.Hi
	}
	return 0
}

// parseInterval разбирает "0.4" или "0.2..0.6"
func parseInterval(s string) (Interval, error) {
	s = strings.TrimSpace(s)
	lo, hi, isRange := strings.Cut(s, "..")
	a, err := strconv.ParseFloat(strings.TrimSpace(lo), 64)
	if err != nil {
		return Interval{}, fmt.Errorf("значение %q: %w", s, err)
	}
	if !isRange {
		return Interval{Lo: a, Hi: a}, nil
	}
	b, err := strconv.ParseFloat(strings.TrimSpace(hi), 64)
	if err != nil {
		return Interval{}, fmt.Errorf("значение %q: %w", s, err)
	}
	if b < a {
		return Interval{}, fmt.Errorf("пустой интервал %q", s)
	}
	return Interval{Lo: a, Hi: b}, nil
}

// Soil - строка таблицы почв: блок и условия, при которых он появляется
type Soil struct {
	Block       block.ID
	Temperature Interval
	Humidity    Interval
}

// Soils сопоставляет климат (температура, влажность) ближайшему блоку почвы.
// Загружается один раз и дальше только читается.
type Soils struct {
	rows []Soil
}

var soilsHeader = []string{"block", "temperature", "humidity"}

// LoadSoils читает таблицу почв из CSV файла
func LoadSoils(path string) (*Soils, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DataError{Path: path, Err: err}
	}
	defer f.Close()
	return ParseSoils(f, path)
}

// ParseSoils разбирает таблицу почв. source используется в сообщениях об ошибках.
// Формат: заголовок block,temperature,humidity; значения - число или интервал a..b.
func ParseSoils(r io.Reader, source string) (*Soils, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = len(soilsHeader)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &DataError{Path: source, Err: errors.New("пустая таблица почв")}
		}
		return nil, &DataError{Path: source, Line: 1, Err: err}
	}
	for i, want := range soilsHeader {
		if strings.ToLower(strings.TrimSpace(header[i])) != want {
			return nil, &DataError{Path: source, Line: 1, Err: fmt.Errorf("ожидался столбец %q, получен %q", want, header[i])}
		}
	}

	s := &Soils{}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, &DataError{Path: source, Line: pe.Line, Err: pe.Err}
			}
			return nil, &DataError{Path: source, Err: err}
		}
		line, _ := cr.FieldPos(0)

		id, err := block.Parse(rec[0])
		if err != nil {
			return nil, &DataError{Path: source, Line: line, Err: err}
		}
		temp, err := parseInterval(rec[1])
		if err != nil {
			return nil, &DataError{Path: source, Line: line, Err: err}
		}
		hum, err := parseInterval(rec[2])
		if err != nil {
			return nil, &DataError{Path: source, Line: line, Err: err}
		}
		s.rows = append(s.rows, Soil{Block: id, Temperature: temp, Humidity: hum})
	}

	if len(s.rows) == 0 {
		return nil, &DataError{Path: source, Err: errors.New("таблица почв не содержит строк")}
	}
	return s, nil
}

// Closest возвращает блок, чьи условия ближе всего к (temp, hum), и расстояние.
// При равенстве побеждает строка, стоящая раньше в таблице.
func (s *Soils) Closest(temp, hum float64) (block.ID, float64, bool) {
	if s == nil || len(s.rows) == 0 {
		return block.Air, 0, false
	}
	best, bestDist := 0, math.Inf(1)
	for i, row := range s.rows {
		dt := row.Temperature.distance(temp)
		dh := row.Humidity.distance(hum)
		d := math.Sqrt(dt*dt + dh*dh)
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return s.rows[best].Block, bestDist, true
}

// Rows возвращает копию строк таблицы
func (s *Soils) Rows() []Soil {
	return append([]Soil(nil), s.rows...)
}
