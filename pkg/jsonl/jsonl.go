package jsonl

import (
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"os"
	"sync"
)

// 自己定義常用的權限常量
const (
	// rw-r--r-- (擁有者讀寫，其他人唯讀)
	FileModeReadOnly fs.FileMode = 0644

	// rw------- (只有擁有者可讀寫)
	FileModePrivate fs.FileMode = 0600
)

// File 一行一筆 JSON 的追加檔 (JSON Lines)
type File struct {
	file *os.File
	enc  *json.Encoder
	mu   sync.Mutex
}

// Open 開啟或建立檔案
// O_RDWR讀寫模式
// O_APPEND 每次寫入時自動跳到文件末尾
// O_CREATE 如果文件不存在則建立
// truncate 為 true 時清空既有內容
func Open(path string, truncate bool) (*File, error) {
	flags := os.O_APPEND | os.O_CREATE | os.O_RDWR
	if truncate {
		flags |= os.O_TRUNC
	}
	file, err := os.OpenFile(path, flags, FileModeReadOnly)
	if err != nil {
		return nil, err
	}
	return &File{
		file: file,
		enc:  json.NewEncoder(file),
	}, nil
}

// Write 寫入一筆資料 (不立即 Sync，由 Close 統一刷入)
func (f *File) Write(v any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enc.Encode(v)
}

// Sync 強制刷入硬碟
func (f *File) Sync() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.file.Sync()
}

// Close 刷入後關閉檔案
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.file.Sync(); err != nil {
		_ = f.file.Close()
		return err
	}
	return f.file.Close()
}

// ReadAll 從頭讀取所有資料
// callback 一次收到一行的原始 JSON，避免一次將所有資料載入記憶體
func (f *File) ReadAll(callback func(raw json.RawMessage) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, err := f.file.Seek(0, io.SeekStart); err != nil {
		return err
	}

	decoder := json.NewDecoder(f.file)
	for {
		var raw json.RawMessage
		if err := decoder.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if err := callback(raw); err != nil {
			return err
		}
	}
}
