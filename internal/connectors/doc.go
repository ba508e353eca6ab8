// Package connectors provides implementations of the FileSource port
// for feeding external documents into the index. The filesystem
// connector walks and watches a local directory tree.
package connectors
