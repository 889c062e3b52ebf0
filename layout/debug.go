package layout

import (
	"encoding/json"
	"io"
	"os"
)

// WriteJSON 将分页结果以缩进 JSON 写入 w，便于调试或交给前端展示。
func WriteJSON(w io.Writer, book *Book) error {
	if book == nil {
		return nil
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(book)
}

// WriteDebugJSON 将分页结果输出为 JSON 文件。
func WriteDebugJSON(book *Book, path string) error {
	if book == nil {
		return nil
	}
	data, err := json.MarshalIndent(book, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
