package domain

// CurrentVersion is the stored document version this build writes.
const CurrentVersion = 1

// Document is the whole persisted unit: every task plus settings.
type Document struct {
	Version  int      `json:"version"`
	Todos    []Task   `json:"todos"`
	Settings Settings `json:"settings"`
}

// NewDocument returns an empty current-version document.
func NewDocument() Document {
	return Document{
		Version:  CurrentVersion,
		Todos:    []Task{},
		Settings: DefaultSettings(),
	}
}

// Clone deep-copies the document.
func (d Document) Clone() Document {
	out := d
	out.Todos = CloneTasks(d.Todos)
	return out
}

// IndexOf returns the position of the task with the given id, or -1.
func (d *Document) IndexOf(id int64) int {
	for i := range d.Todos {
		if d.Todos[i].ID == id {
			return i
		}
	}
	return -1
}
