package accircuit

import (
	"accircuit/element"
	"accircuit/network"
	"accircuit/savefile"
	"fmt"
	"io"
	"os"
	"time"
)

// Document 导出为存档内容，电路按创建顺序(子电路总在父电路之前)
func (p *Project) Document() *savefile.Document {
	doc := &savefile.Document{SavedAt: time.Now()}
	for _, comp := range p.components {
		doc.Components = append(doc.Components, savefile.ComponentRecord{
			Label: comp.Label(),
			Kind:  comp.Type().String(),
			Value: comp.Value(),
		})
	}
	for _, c := range p.orderedCircuits() {
		doc.Circuits = append(doc.Circuits, savefile.CircuitRecord{
			Label:      c.Label(),
			Connection: c.Connection().String(),
			Frequency:  c.Frequency(),
			Members:    c.Members(),
		})
	}
	return doc
}

// orderedCircuits 保证子电路排在引用它的电路之前
// 正常创建流程下即为创建顺序
func (p *Project) orderedCircuits() []*network.Circuit {
	done := map[*network.Circuit]bool{}
	list := make([]*network.Circuit, 0, len(p.circuits))
	var visit func(c *network.Circuit)
	visit = func(c *network.Circuit) {
		if done[c] {
			return
		}
		done[c] = true
		for _, sub := range c.Subcircuits() {
			visit(sub)
		}
		list = append(list, c)
	}
	for _, c := range p.circuits {
		visit(c)
	}
	return list
}

// FromDocument 由存档内容重建工程
// 电路只能引用之前已定义的标签，标签保持存档中的值
// 子电路的频率以父电路为准，存档中记录的值会被覆盖
func FromDocument(doc *savefile.Document) (*Project, error) {
	p := NewProject()
	for _, rec := range doc.Components {
		t, err := element.TypeByName(rec.Kind)
		if err != nil {
			return nil, fmt.Errorf("%w: 第 %d 行: %w", savefile.ErrInvalidSaveFile, rec.Line, err)
		}
		if err := checkLabel(rec.Label); err != nil {
			return nil, fmt.Errorf("%w: 第 %d 行: %w", savefile.ErrInvalidSaveFile, rec.Line, err)
		}
		if p.exists(rec.Label) {
			return nil, fmt.Errorf("%w: 第 %d 行: %w: %s", savefile.ErrInvalidSaveFile, rec.Line, ErrDuplicateLabel, rec.Label)
		}
		comp, err := element.New(t, rec.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: 第 %d 行: %w", savefile.ErrInvalidSaveFile, rec.Line, err)
		}
		comp.SetLabel(rec.Label)
		p.components = append(p.components, comp)
		p.bump(rec.Label, t.Prefix())
	}
	for _, rec := range doc.Circuits {
		connection, err := network.ParseConnection(rec.Connection)
		if err != nil {
			return nil, fmt.Errorf("%w: 第 %d 行: %w", savefile.ErrInvalidSaveFile, rec.Line, err)
		}
		if err := checkLabel(rec.Label); err != nil {
			return nil, fmt.Errorf("%w: 第 %d 行: %w", savefile.ErrInvalidSaveFile, rec.Line, err)
		}
		if p.exists(rec.Label) {
			return nil, fmt.Errorf("%w: 第 %d 行: %w: %s", savefile.ErrInvalidSaveFile, rec.Line, ErrDuplicateLabel, rec.Label)
		}
		if err := checkFrequency(rec.Frequency); err != nil {
			return nil, fmt.Errorf("%w: 第 %d 行: %w", savefile.ErrInvalidSaveFile, rec.Line, err)
		}
		c := network.New(connection, rec.Frequency)
		c.SetLabel(rec.Label)
		p.circuits = append(p.circuits, c)
		p.bump(rec.Label, circuitCounter)
		if err := p.Attach(rec.Label, rec.Members...); err != nil {
			return nil, fmt.Errorf("%w: 第 %d 行: %w", savefile.ErrInvalidSaveFile, rec.Line, err)
		}
	}
	return p, nil
}

// Load 从存档读取工程
func Load(r io.Reader) (*Project, error) {
	doc, err := savefile.Parse(r)
	if err != nil {
		return nil, err
	}
	return FromDocument(doc)
}

// Save 写出存档
func (p *Project) Save(w io.Writer) error {
	return p.Document().Write(w)
}

// LoadFile 从文件读取工程
func LoadFile(filename string) (*Project, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return Load(file)
}

// SaveFile 写出存档文件
func (p *Project) SaveFile(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := p.Save(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
