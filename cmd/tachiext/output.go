package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dikkadev/tachiext/pkg/github"
	"github.com/dikkadev/tachiext/pkg/storage"
	"gopkg.in/yaml.v3"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

// installedRow is the listing view of an installed extension
type installedRow struct {
	PackageName string `json:"package_name" yaml:"package_name"`
	Name        string `json:"name" yaml:"name"`
	VersionName string `json:"version_name" yaml:"version_name"`
	VersionCode int    `json:"version_code" yaml:"version_code"`
	Lang        string `json:"lang" yaml:"lang"`
	ApkPath     string `json:"apk_path" yaml:"apk_path"`
	UpdatedAt   string `json:"updated_at" yaml:"updated_at"`
}

func toInstalledRows(exts []*storage.Extension) []installedRow {
	rows := make([]installedRow, 0, len(exts))
	for _, ext := range exts {
		rows = append(rows, installedRow{
			PackageName: ext.PackageName,
			Name:        ext.Name,
			VersionName: ext.VersionName,
			VersionCode: ext.VersionCode,
			Lang:        ext.Lang,
			ApkPath:     ext.ApkPath,
			UpdatedAt:   ext.UpdatedAt.Format(time.DateTime),
		})
	}
	return rows
}

func checkFormat(format string) error {
	switch format {
	case formatTable, formatJSON, formatYAML:
		return nil
	}
	return fmt.Errorf("unknown output format %q (table, json, yaml)", format)
}

func encode(w io.Writer, format string, v any) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	}
	return checkFormat(format)
}

func printAvailable(w io.Writer, format string, exts []github.Extension) error {
	if exts == nil {
		exts = []github.Extension{}
	}
	if format != formatTable {
		return encode(w, format, exts)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tLANG\tVERSION\tCODE\tNSFW\tPACKAGE")
	for _, ext := range exts {
		nsfw := ""
		if ext.IsNSFW {
			nsfw = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n", ext.Name, ext.Lang, ext.VersionName, ext.VersionCode, nsfw, ext.PackageName)
	}
	return tw.Flush()
}

func printInstalled(w io.Writer, format string, exts []*storage.Extension) error {
	rows := toInstalledRows(exts)
	if format != formatTable {
		return encode(w, format, rows)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tLANG\tVERSION\tCODE\tPACKAGE")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", r.Name, r.Lang, r.VersionName, r.VersionCode, r.PackageName)
	}
	return tw.Flush()
}

func printUpdates(w io.Writer, updates []*storage.Extension) {
	if len(updates) == 0 {
		fmt.Fprintln(w, "All extensions are up to date")
		return
	}

	names := make([]string, 0, len(updates))
	for _, ext := range updates {
		names = append(names, fmt.Sprintf("  %s (%s, code %d)", ext.PackageName, ext.VersionName, ext.VersionCode))
	}
	fmt.Fprintf(w, "Updates available for %d extension(s):\n%s\n", len(updates), strings.Join(names, "\n"))
}
