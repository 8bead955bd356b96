package models

import "slices"

// TagsAndFolders is the sidebar metadata: quick-access folders and the
// global tag vocabulary. It is independent of the notes that use the tags.
type TagsAndFolders struct {
	Folders []string `yaml:"folders" json:"folders"`
	Tags    []string `yaml:"tags" json:"tags"`
}

// DefaultTagsAndFolders is what a new library starts with.
func DefaultTagsAndFolders() TagsAndFolders {
	return TagsAndFolders{
		Folders: []string{"All Notes", "Personal", "Work", "Ideas"},
		Tags:    []string{"important", "draft", "completed", "reference"},
	}
}

// AddFolder appends folder unless an identical entry exists.
// It reports whether the value changed.
func (tf *TagsAndFolders) AddFolder(folder string) bool {
	return addUnique(&tf.Folders, folder)
}

// RemoveFolder drops every entry equal to folder.
func (tf *TagsAndFolders) RemoveFolder(folder string) bool {
	return removeAll(&tf.Folders, folder)
}

// AddTag appends tag unless an identical entry exists.
func (tf *TagsAndFolders) AddTag(tag string) bool {
	return addUnique(&tf.Tags, tag)
}

// RemoveTag drops every entry equal to tag.
func (tf *TagsAndFolders) RemoveTag(tag string) bool {
	return removeAll(&tf.Tags, tag)
}

func addUnique(list *[]string, v string) bool {
	if slices.Contains(*list, v) {
		return false
	}
	*list = append(*list, v)
	return true
}

func removeAll(list *[]string, v string) bool {
	before := len(*list)
	*list = slices.DeleteFunc(*list, func(s string) bool { return s == v })
	return len(*list) != before
}
