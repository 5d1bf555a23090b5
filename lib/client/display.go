// splunkctl
// Copyright (C) 2025  splunkctl authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package client

import (
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/splunkctl/splunkctl/lib/output"
)

// ResourceDisplay implementations. Row cells and XML field values render
// absent server fields as empty, never as fabricated zeros.

func strVal(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func intVal(p *int64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatInt(*p, 10)
}

func boolVal(p *bool) string {
	if p == nil {
		return ""
	}
	return strconv.FormatBool(*p)
}

func floatVal(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}

func listVal(values []string) string {
	return strings.Join(values, ",")
}

func epochVal(p *int64) string {
	if p == nil {
		return ""
	}
	return time.Unix(*p, 0).UTC().Format(time.RFC3339)
}

// sp turns a cell into an XML field value, mapping "" to nil.
func sp(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func xmlFields(names []string, cells []string) []output.Field {
	fields := make([]output.Field, len(names))
	for i := range names {
		var v *string
		if i < len(cells) {
			v = sp(cells[i])
		}
		fields[i] = output.Field{Name: names[i], Value: v}
	}
	return fields
}

func (i *Index) Headers(detailed bool) []string {
	h := []string{"name", "events", "size_mb", "max_size_mb"}
	if detailed {
		h = append(h, "datatype", "min_time", "max_time", "frozen_secs", "home_path", "disabled")
	}
	return h
}

func (i *Index) Row(detailed bool) []string {
	r := []string{i.Name, intVal(i.TotalEventCount), intVal(i.CurrentDBSizeMB), intVal(i.MaxTotalDataSizeMB)}
	if detailed {
		r = append(r, strVal(i.DataType), strVal(i.MinTime), strVal(i.MaxTime),
			intVal(i.FrozenTimePeriodInSecs), strVal(i.HomePath), boolVal(i.Disabled))
	}
	return r
}

func (i *Index) XMLElement() string { return "index" }
func (i *Index) XMLFields() []output.Field {
	return xmlFields(i.Headers(true), i.Row(true))
}

func (j *SearchJobStatus) Headers(detailed bool) []string {
	h := []string{"sid", "done", "progress", "results", "run_duration"}
	if detailed {
		h = append(h, "failed", "events", "scanned", "disk_usage", "earliest", "latest", "label")
	}
	return h
}

func (j *SearchJobStatus) Row(detailed bool) []string {
	r := []string{j.SID, boolVal(j.IsDone), floatVal(j.DoneProgress), intVal(j.ResultCount), floatVal(j.RunDuration)}
	if detailed {
		r = append(r, boolVal(j.IsFailed), intVal(j.EventCount), intVal(j.ScanCount),
			intVal(j.DiskUsage), strVal(j.EarliestTime), strVal(j.LatestTime), strVal(j.Label))
	}
	return r
}

func (j *SearchJobStatus) XMLElement() string { return "job" }
func (j *SearchJobStatus) XMLFields() []output.Field {
	return xmlFields(j.Headers(true), j.Row(true))
}

func (s *SavedSearch) Headers(detailed bool) []string {
	h := []string{"name", "scheduled", "cron", "disabled"}
	if detailed {
		h = append(h, "search", "description", "next_run")
	}
	return h
}

func (s *SavedSearch) Row(detailed bool) []string {
	r := []string{s.Name, boolVal(s.IsScheduled), strVal(s.CronSchedule), boolVal(s.Disabled)}
	if detailed {
		r = append(r, strVal(s.Search), strVal(s.Description), strVal(s.NextScheduledTime))
	}
	return r
}

func (s *SavedSearch) XMLElement() string { return "saved_search" }
func (s *SavedSearch) XMLFields() []output.Field {
	return xmlFields(s.Headers(true), s.Row(true))
}

func (u *User) Headers(detailed bool) []string {
	h := []string{"name", "real_name", "roles"}
	if detailed {
		h = append(h, "email", "default_app", "auth_type", "locked_out")
	}
	return h
}

func (u *User) Row(detailed bool) []string {
	r := []string{u.Name, strVal(u.RealName), listVal(u.Roles)}
	if detailed {
		r = append(r, strVal(u.Email), strVal(u.DefaultApp), strVal(u.AuthType), boolVal(u.LockedOut))
	}
	return r
}

func (u *User) XMLElement() string { return "user" }
func (u *User) XMLFields() []output.Field {
	return xmlFields(u.Headers(true), u.Row(true))
}

func (r *Role) Headers(detailed bool) []string {
	h := []string{"name", "imported_roles", "indexes_allowed"}
	if detailed {
		h = append(h, "capabilities", "search_disk_quota", "search_jobs_quota")
	}
	return h
}

func (r *Role) Row(detailed bool) []string {
	row := []string{r.Name, listVal(r.ImportedRoles), listVal(r.SrchIndexesAllowed)}
	if detailed {
		row = append(row, listVal(r.Capabilities), intVal(r.SrchDiskQuota), intVal(r.SrchJobsQuota))
	}
	return row
}

func (r *Role) XMLElement() string { return "role" }
func (r *Role) XMLFields() []output.Field {
	return xmlFields(r.Headers(true), r.Row(true))
}

func (a *App) Headers(detailed bool) []string {
	h := []string{"name", "label", "version", "disabled"}
	if detailed {
		h = append(h, "author", "description", "visible", "configured")
	}
	return h
}

func (a *App) Row(detailed bool) []string {
	r := []string{a.Name, strVal(a.Label), strVal(a.Version), boolVal(a.Disabled)}
	if detailed {
		r = append(r, strVal(a.Author), strVal(a.Description), boolVal(a.Visible), boolVal(a.Configured))
	}
	return r
}

func (a *App) XMLElement() string { return "app" }
func (a *App) XMLFields() []output.Field {
	return xmlFields(a.Headers(true), a.Row(true))
}

func (f *Forwarder) Headers(detailed bool) []string {
	h := []string{"name", "ip", "version", "last_phone_home"}
	if detailed {
		h = append(h, "hostname", "client_name", "dns", "build", "utsname")
	}
	return h
}

func (f *Forwarder) Row(detailed bool) []string {
	r := []string{f.Name, strVal(f.IP), strVal(f.Version), epochVal(f.LastPhoneHomeTime)}
	if detailed {
		r = append(r, strVal(f.Hostname), strVal(f.ClientName), strVal(f.DNS), strVal(f.Build), strVal(f.UTSName))
	}
	return r
}

func (f *Forwarder) XMLElement() string { return "forwarder" }
func (f *Forwarder) XMLFields() []output.Field {
	return xmlFields(f.Headers(true), f.Row(true))
}

func (i *Input) Headers(detailed bool) []string {
	h := []string{"name", "kind", "index", "disabled"}
	if detailed {
		h = append(h, "sourcetype", "host")
	}
	return h
}

func (i *Input) Row(detailed bool) []string {
	r := []string{i.Name, i.Kind, strVal(i.Index), boolVal(i.Disabled)}
	if detailed {
		r = append(r, strVal(i.Sourcetype), strVal(i.Host))
	}
	return r
}

func (i *Input) XMLElement() string { return "input" }
func (i *Input) XMLFields() []output.Field {
	return xmlFields(i.Headers(true), i.Row(true))
}

func (l *LookupTable) Headers(detailed bool) []string {
	h := []string{"name", "app", "owner"}
	if detailed {
		h = append(h, "sharing", "path")
	}
	return h
}

func (l *LookupTable) Row(detailed bool) []string {
	r := []string{l.Name, strVal(l.App), strVal(l.Owner)}
	if detailed {
		r = append(r, strVal(l.Sharing), strVal(l.Path))
	}
	return r
}

func (l *LookupTable) XMLElement() string { return "lookup" }
func (l *LookupTable) XMLFields() []output.Field {
	return xmlFields(l.Headers(true), l.Row(true))
}

func (c *ConfigStanza) Headers(detailed bool) []string {
	h := []string{"file", "stanza", "settings"}
	return h
}

func (c *ConfigStanza) Row(detailed bool) []string {
	return []string{c.File, c.Name, strconv.Itoa(len(c.Settings))}
}

func (c *ConfigStanza) XMLElement() string { return "stanza" }
func (c *ConfigStanza) XMLFields() []output.Field {
	fields := []output.Field{
		{Name: "file", Value: sp(c.File)},
		{Name: "name", Value: sp(c.Name)},
	}
	for _, key := range sortedKeys(c.Settings) {
		fields = append(fields, output.Field{Name: key, Value: sp(c.Settings[key])})
	}
	return fields
}

func (c *ConfigFile) Headers(bool) []string { return []string{"name", "stanzas"} }
func (c *ConfigFile) Row(bool) []string {
	return []string{c.Name, strconv.Itoa(c.StanzaCount)}
}
func (c *ConfigFile) XMLElement() string { return "config_file" }
func (c *ConfigFile) XMLFields() []output.Field {
	return xmlFields(c.Headers(true), c.Row(true))
}

func (f *FiredAlert) Headers(detailed bool) []string {
	h := []string{"name", "saved_search", "triggered_at", "severity"}
	if detailed {
		h = append(h, "sid", "alert_type")
	}
	return h
}

func (f *FiredAlert) Row(detailed bool) []string {
	r := []string{f.Name, strVal(f.SavedSearchName), epochVal(f.TriggerTime), intVal(f.Severity)}
	if detailed {
		r = append(r, strVal(f.Sid), strVal(f.AlertType))
	}
	return r
}

func (f *FiredAlert) XMLElement() string { return "fired_alert" }
func (f *FiredAlert) XMLFields() []output.Field {
	return xmlFields(f.Headers(true), f.Row(true))
}

func (l *LicenseUsage) Headers(bool) []string {
	return []string{"name", "quota_bytes", "used_bytes", "effective_quota"}
}

func (l *LicenseUsage) Row(bool) []string {
	return []string{l.Name, intVal(l.Quota), intVal(l.UsedBytes), intVal(l.EffectiveQ)}
}

func (l *LicenseUsage) XMLElement() string { return "license_usage" }
func (l *LicenseUsage) XMLFields() []output.Field {
	return xmlFields(l.Headers(true), l.Row(true))
}

func (l *LicensePool) Headers(detailed bool) []string {
	h := []string{"name", "quota", "used_bytes", "stack"}
	if detailed {
		h = append(h, "description")
	}
	return h
}

func (l *LicensePool) Row(detailed bool) []string {
	r := []string{l.Name, strVal(l.Quota), intVal(l.UsedBytes), strVal(l.StackID)}
	if detailed {
		r = append(r, strVal(l.Description))
	}
	return r
}

func (l *LicensePool) XMLElement() string { return "license_pool" }
func (l *LicensePool) XMLFields() []output.Field {
	return xmlFields(l.Headers(true), l.Row(true))
}

func (l *LicenseStack) Headers(bool) []string {
	return []string{"name", "label", "quota_bytes", "type"}
}

func (l *LicenseStack) Row(bool) []string {
	return []string{l.Name, strVal(l.Label), intVal(l.Quota), strVal(l.Type)}
}

func (l *LicenseStack) XMLElement() string { return "license_stack" }
func (l *LicenseStack) XMLFields() []output.Field {
	return xmlFields(l.Headers(true), l.Row(true))
}

func (k *KvStoreStatus) Headers(detailed bool) []string {
	h := []string{"name", "status", "replication_status"}
	if detailed {
		h = append(h, "storage_engine", "port", "standalone")
	}
	return h
}

func (k *KvStoreStatus) Row(detailed bool) []string {
	r := []string{k.Name, strVal(k.Status), strVal(k.ReplicationStatus)}
	if detailed {
		r = append(r, strVal(k.StorageEngine), strVal(k.Port), strVal(k.Standalone))
	}
	return r
}

func (k *KvStoreStatus) XMLElement() string { return "kvstore" }
func (k *KvStoreStatus) XMLFields() []output.Field {
	return xmlFields(k.Headers(true), k.Row(true))
}

func (m *Macro) Headers(detailed bool) []string {
	h := []string{"name", "definition", "disabled"}
	if detailed {
		h = append(h, "args", "validation", "is_eval")
	}
	return h
}

func (m *Macro) Row(detailed bool) []string {
	r := []string{m.Name, strVal(m.Definition), boolVal(m.Disabled)}
	if detailed {
		r = append(r, strVal(m.Args), strVal(m.Validation), boolVal(m.IsEval))
	}
	return r
}

func (m *Macro) XMLElement() string { return "macro" }
func (m *Macro) XMLFields() []output.Field {
	return xmlFields(m.Headers(true), m.Row(true))
}

func (p *SearchPeer) Headers(detailed bool) []string {
	h := []string{"name", "status", "version"}
	if detailed {
		h = append(h, "host", "replication_status", "https")
	}
	return h
}

func (p *SearchPeer) Row(detailed bool) []string {
	r := []string{p.Name, strVal(p.Status), strVal(p.Version)}
	if detailed {
		r = append(r, strVal(p.Host), strVal(p.ReplicationStatus), boolVal(p.IsHTTPS))
	}
	return r
}

func (p *SearchPeer) XMLElement() string { return "search_peer" }
func (p *SearchPeer) XMLFields() []output.Field {
	return xmlFields(p.Headers(true), p.Row(true))
}

func (s *ServerInfo) Headers(detailed bool) []string {
	h := []string{"server_name", "version", "build"}
	if detailed {
		h = append(h, "os", "cpu_arch", "cores", "memory_mb", "roles")
	}
	return h
}

func (s *ServerInfo) Row(detailed bool) []string {
	r := []string{strVal(s.ServerName), strVal(s.Version), strVal(s.Build)}
	if detailed {
		r = append(r, strVal(s.OSName), strVal(s.CPUArch), intVal(s.NumberOfCores),
			intVal(s.PhysicalMemoryMB), listVal(s.ServerRoles))
	}
	return r
}

func (s *ServerInfo) XMLElement() string { return "server_info" }
func (s *ServerInfo) XMLFields() []output.Field {
	return xmlFields(s.Headers(true), s.Row(true))
}

func (h *HealthCheckOutput) Headers(bool) []string {
	return []string{"name", "health", "features"}
}

func (h *HealthCheckOutput) Row(bool) []string {
	parts := make([]string, 0, len(h.Features))
	for _, f := range h.Features {
		parts = append(parts, f.Name+"="+f.Health)
	}
	return []string{h.Name, h.Health, strings.Join(parts, ",")}
}

func (f *FeatureHealth) Headers(bool) []string {
	return []string{"name", "health"}
}

func (f *FeatureHealth) Row(bool) []string {
	return []string{f.Name, f.Health}
}

func (f *FeatureHealth) XMLElement() string { return "feature" }
func (f *FeatureHealth) XMLFields() []output.Field {
	return xmlFields(f.Headers(true), f.Row(true))
}

func (h *HealthCheckOutput) XMLElement() string { return "health" }
func (h *HealthCheckOutput) XMLFields() []output.Field {
	fields := []output.Field{
		{Name: "name", Value: sp(h.Name)},
		{Name: "health", Value: sp(h.Health)},
	}
	for _, f := range h.Features {
		fields = append(fields, output.Field{Name: f.Name, Value: sp(f.Health)})
	}
	return fields
}

func (a *AuditEvent) Headers(bool) []string {
	return []string{"time", "user", "action", "info"}
}

func (a *AuditEvent) Row(bool) []string {
	return []string{a.Time, a.User, a.Action, a.Info}
}

func (a *AuditEvent) XMLElement() string { return "audit_event" }
func (a *AuditEvent) XMLFields() []output.Field {
	return xmlFields(a.Headers(true), a.Row(true))
}

// sortedKeys keeps XML output deterministic regardless of map order.
func sortedKeys(m map[string]string) []string {
	return slices.Sorted(maps.Keys(m))
}

func (cc *ClusterConfig) Headers(detailed bool) []string {
	headers := []string{"name", "mode", "manager_uri"}
	if detailed {
		headers = append(headers, "replication_factor", "search_factor", "disabled")
	}
	return headers
}
func (cc *ClusterConfig) Row(detailed bool) []string {
	row := []string{cc.Name, strVal(cc.Mode), strVal(cc.ManagerURI)}
	if detailed {
		row = append(row, intVal(cc.ReplicationFactor), intVal(cc.SearchFactor), boolVal(cc.Disabled))
	}
	return row
}
func (cc *ClusterConfig) XMLElement() string { return "cluster_config" }
func (cc *ClusterConfig) XMLFields() []output.Field {
	return xmlFields(cc.Headers(true), cc.Row(true))
}
