package model

// SourceFile is a file fetched from an external repository for import.
type SourceFile struct {
	Path    string
	Content string
}

// ImportResult summarizes a repository import into a project.
type ImportResult struct {
	Repository string
	Ref        string
	Imported   int
	Skipped    int
	Paths      []string
}
