package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadRows читает табличные данные из загруженного файла. Формат выбирается по
// расширению: .xlsx разбирается excelize (первый лист), всё остальное — как
// CSV с автоопределением разделителя (';' или ',') по строке заголовка.
func ReadRows(r io.Reader, filename string) ([][]string, error) {
	if strings.HasSuffix(strings.ToLower(filename), ".xlsx") {
		return readExcelRows(r)
	}
	return readCSVRows(r)
}

func readExcelRows(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("в файле нет листов")
	}
	return f.GetRows(sheets[0])
}

func readCSVRows(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = detectDelimiter(data)
	reader.FieldsPerRecord = -1 // строки разной длины допустимы
	reader.TrimLeadingSpace = true
	return reader.ReadAll()
}

// detectDelimiter выбирает разделитель по первой строке: выгрузки из русских
// локалей Excel используют ';', остальные — ','.
func detectDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if bytes.Count(line, []byte(";")) > bytes.Count(line, []byte(",")) {
		return ';'
	}
	return ','
}
