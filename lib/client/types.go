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

// Domain records for Splunk resources. JSON tags follow splunkd's own
// field naming. Optional server fields are pointers so an absent value
// is distinguishable from a zero; formatters render nil as empty.
//
// Name always comes from the entry envelope, merged in by the client
// before a record is returned. When the content object also carries a
// name, the envelope wins.

// Index is a Splunk data index.
type Index struct {
	Name                   string  `json:"name"`
	DataType               *string `json:"datatype,omitempty"`
	TotalEventCount        *int64  `json:"totalEventCount,omitempty"`
	CurrentDBSizeMB        *int64  `json:"currentDBSizeMB,omitempty"`
	MaxTotalDataSizeMB     *int64  `json:"maxTotalDataSizeMB,omitempty"`
	MinTime                *string `json:"minTime,omitempty"`
	MaxTime                *string `json:"maxTime,omitempty"`
	FrozenTimePeriodInSecs *int64  `json:"frozenTimePeriodInSecs,omitempty"`
	HomePath               *string `json:"homePath,omitempty"`
	Disabled               *bool   `json:"disabled,omitempty"`
}

func (i *Index) setName(n string) { i.Name = n }

// SearchJobStatus is the state of one search job, keyed by SID.
type SearchJobStatus struct {
	SID          string   `json:"sid"`
	IsDone       *bool    `json:"isDone,omitempty"`
	IsFailed     *bool    `json:"isFailed,omitempty"`
	IsFinalized  *bool    `json:"isFinalized,omitempty"`
	DoneProgress *float64 `json:"doneProgress,omitempty"`
	RunDuration  *float64 `json:"runDuration,omitempty"`
	EventCount   *int64   `json:"eventCount,omitempty"`
	ResultCount  *int64   `json:"resultCount,omitempty"`
	ScanCount    *int64   `json:"scanCount,omitempty"`
	DiskUsage    *int64   `json:"diskUsage,omitempty"`
	EarliestTime *string  `json:"earliestTime,omitempty"`
	LatestTime   *string  `json:"latestTime,omitempty"`
	Label        *string  `json:"label,omitempty"`
}

func (j *SearchJobStatus) setName(n string) { j.SID = n }

// SavedSearch is a saved search or scheduled report.
type SavedSearch struct {
	Name              string  `json:"name"`
	Search            *string `json:"search,omitempty"`
	Description       *string `json:"description,omitempty"`
	CronSchedule      *string `json:"cron_schedule,omitempty"`
	IsScheduled       *bool   `json:"is_scheduled,omitempty"`
	NextScheduledTime *string `json:"next_scheduled_time,omitempty"`
	Disabled          *bool   `json:"disabled,omitempty"`
}

func (s *SavedSearch) setName(n string) { s.Name = n }

// User is a Splunk user account.
type User struct {
	Name       string   `json:"name"`
	RealName   *string  `json:"realname,omitempty"`
	Email      *string  `json:"email,omitempty"`
	DefaultApp *string  `json:"defaultApp,omitempty"`
	Roles      []string `json:"roles,omitempty"`
	AuthType   *string  `json:"type,omitempty"`
	LockedOut  *bool    `json:"locked-out,omitempty"`
}

func (u *User) setName(n string) { u.Name = n }

// Role is an authorization role.
type Role struct {
	Name               string   `json:"name"`
	ImportedRoles      []string `json:"imported_roles,omitempty"`
	Capabilities       []string `json:"capabilities,omitempty"`
	SrchIndexesAllowed []string `json:"srchIndexesAllowed,omitempty"`
	SrchDiskQuota      *int64   `json:"srchDiskQuota,omitempty"`
	SrchJobsQuota      *int64   `json:"srchJobsQuota,omitempty"`
}

func (r *Role) setName(n string) { r.Name = n }

// App is an installed Splunk app.
type App struct {
	Name        string  `json:"name"`
	Label       *string `json:"label,omitempty"`
	Version     *string `json:"version,omitempty"`
	Author      *string `json:"author,omitempty"`
	Description *string `json:"description,omitempty"`
	Disabled    *bool   `json:"disabled,omitempty"`
	Visible     *bool   `json:"visible,omitempty"`
	Configured  *bool   `json:"configured,omitempty"`
}

func (a *App) setName(n string) { a.Name = n }

// Forwarder is a deployment client phoning home to this instance.
type Forwarder struct {
	Name              string  `json:"name"`
	Hostname          *string `json:"hostname,omitempty"`
	ClientName        *string `json:"clientName,omitempty"`
	IP                *string `json:"ip,omitempty"`
	DNS               *string `json:"dns,omitempty"`
	Build             *string `json:"build,omitempty"`
	Version           *string `json:"version,omitempty"`
	UTSName           *string `json:"utsname,omitempty"`
	LastPhoneHomeTime *int64  `json:"lastPhoneHomeTime,omitempty"`
}

func (f *Forwarder) setName(n string) { f.Name = n }

// Input is a data input stanza of any kind (monitor, tcp, udp, script).
type Input struct {
	Name       string  `json:"name"`
	Kind       string  `json:"-"`
	Index      *string `json:"index,omitempty"`
	Sourcetype *string `json:"sourcetype,omitempty"`
	Host       *string `json:"host,omitempty"`
	Disabled   *bool   `json:"disabled,omitempty"`
}

func (i *Input) setName(n string) { i.Name = n }

// LookupTable is a lookup table file.
type LookupTable struct {
	Name    string  `json:"name"`
	Path    *string `json:"eai:data,omitempty"`
	Owner   *string `json:"-"`
	App     *string `json:"-"`
	Sharing *string `json:"-"`
}

func (l *LookupTable) setName(n string) { l.Name = n }

// ConfigStanza is one named section of a .conf file.
type ConfigStanza struct {
	Name     string            `json:"name"`
	File     string            `json:"-"`
	Settings map[string]string `json:"-"`
}

func (c *ConfigStanza) setName(n string) { c.Name = n }

// ConfigFile summarizes one .conf file for listing.
type ConfigFile struct {
	Name        string `json:"name"`
	StanzaCount int    `json:"-"`
}

func (c *ConfigFile) setName(n string) { c.Name = n }

// FiredAlert is a triggered alert instance.
type FiredAlert struct {
	Name            string  `json:"name"`
	SavedSearchName *string `json:"savedsearch_name,omitempty"`
	Sid             *string `json:"sid,omitempty"`
	TriggerTime     *int64  `json:"trigger_time,omitempty"`
	Severity        *int64  `json:"severity,omitempty"`
	AlertType       *string `json:"alert_type,omitempty"`
}

func (f *FiredAlert) setName(n string) { f.Name = n }

// LicenseUsage is the license usage report for one slave/pool pair.
type LicenseUsage struct {
	Name       string `json:"name"`
	Quota      *int64 `json:"quota,omitempty"`
	UsedBytes  *int64 `json:"slaves_usage_bytes,omitempty"`
	EffectiveQ *int64 `json:"effective_quota,omitempty"`
}

func (l *LicenseUsage) setName(n string) { l.Name = n }

// LicensePool is a license pool.
type LicensePool struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Quota       *string `json:"quota,omitempty"`
	UsedBytes   *int64  `json:"used_bytes,omitempty"`
	StackID     *string `json:"stack_id,omitempty"`
}

func (l *LicensePool) setName(n string) { l.Name = n }

// LicenseStack is a license stack.
type LicenseStack struct {
	Name    string  `json:"name"`
	Label   *string `json:"label,omitempty"`
	Quota   *int64  `json:"quota,omitempty"`
	Type    *string `json:"type,omitempty"`
	IsTrial *bool   `json:"is_trial,omitempty"`
}

func (l *LicenseStack) setName(n string) { l.Name = n }

// KvStoreStatus is the KV store health summary.
type KvStoreStatus struct {
	Name              string  `json:"name"`
	Status            *string `json:"status,omitempty"`
	ReplicationStatus *string `json:"replicationStatus,omitempty"`
	StorageEngine     *string `json:"storageEngine,omitempty"`
	Port              *string `json:"port,omitempty"`
	Standalone        *string `json:"standalone,omitempty"`
}

func (k *KvStoreStatus) setName(n string) { k.Name = n }

// Macro is a search macro.
type Macro struct {
	Name       string  `json:"name"`
	Definition *string `json:"definition,omitempty"`
	Args       *string `json:"args,omitempty"`
	Validation *string `json:"validation,omitempty"`
	IsEval     *bool   `json:"iseval,omitempty"`
	Disabled   *bool   `json:"disabled,omitempty"`
}

func (m *Macro) setName(n string) { m.Name = n }

// SearchPeer is a distributed search peer.
type SearchPeer struct {
	Name              string  `json:"name"`
	Host              *string `json:"host,omitempty"`
	Status            *string `json:"status,omitempty"`
	Version           *string `json:"version,omitempty"`
	ReplicationStatus *string `json:"replicationStatus,omitempty"`
	IsHTTPS           *bool   `json:"is_https,omitempty"`
}

func (p *SearchPeer) setName(n string) { p.Name = n }

// ServerInfo describes the splunkd instance itself.
type ServerInfo struct {
	Name             string  `json:"name"`
	ServerName       *string `json:"serverName,omitempty"`
	Version          *string `json:"version,omitempty"`
	Build            *string `json:"build,omitempty"`
	OSName           *string `json:"os_name,omitempty"`
	CPUArch          *string `json:"cpu_arch,omitempty"`
	NumberOfCores    *int64  `json:"numberOfCores,omitempty"`
	PhysicalMemoryMB *int64  `json:"physicalMemoryMB,omitempty"`
	ServerRoles      []string `json:"server_roles,omitempty"`
}

func (s *ServerInfo) setName(n string) { s.Name = n }

// FeatureHealth is one node of the splunkd health report tree.
type FeatureHealth struct {
	Name   string `json:"name"`
	Health string `json:"health"`
}

// HealthCheckOutput is the parsed splunkd health report.
type HealthCheckOutput struct {
	Name     string          `json:"name"`
	Health   string          `json:"health"`
	Features []FeatureHealth `json:"-"`
}

func (h *HealthCheckOutput) setName(n string) { h.Name = n }

// AuditEvent is one row of the _audit index.
type AuditEvent struct {
	Time   string `json:"_time"`
	User   string `json:"user"`
	Action string `json:"action"`
	Info   string `json:"info"`
	Raw    string `json:"_raw"`
}

// HecEvent is one event submitted to the HTTP Event Collector.
type HecEvent struct {
	Event      any     `json:"event"`
	Host       *string `json:"host,omitempty"`
	Source     *string `json:"source,omitempty"`
	Sourcetype *string `json:"sourcetype,omitempty"`
	Index      *string `json:"index,omitempty"`
	Time       *float64 `json:"time,omitempty"`
}

// HecResponse is the collector's acknowledgement.
type HecResponse struct {
	Text  string `json:"text"`
	Code  int    `json:"code"`
	AckID *int64 `json:"ackId,omitempty"`
}

// SearchResults is a page of search result rows with the field order the
// server reported. Rows are dynamic; rendering goes through the
// formatters' dynamic entry point rather than ResourceDisplay.
type SearchResults struct {
	Fields []string
	Rows   []map[string]string
	// Offset is the zero-based index of the first row in the page.
	Offset int
	// Total is the job's result count when known, else -1.
	Total int
}
