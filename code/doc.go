// Package code seeds a chat session with the contents of a source tree so a
// model can review it. It walks the project directory, skips configured
// ignore directories and hidden files, wraps each file in filename tags, and
// combines the result with a review prompt. A .bedrustrules file at the
// project root replaces the default prompt.
package code
