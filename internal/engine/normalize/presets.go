package normalize

import "strings"

// AliasTable maps a canonical field name to the provider field names that may
// carry its value. Aliases are tried in order after the canonical name itself.
type AliasTable map[string][]string

// Preset bundles the alias tables for one CRM provider.
type Preset struct {
	Name        string
	Lead        AliasTable
	Opportunity AliasTable
	Rep         AliasTable
	Activity    AliasTable
}

// genericPreset covers the common snake_case and camelCase spellings seen in
// ad-hoc CSV/JSON exports. Provider presets extend it with their own names.
var genericPreset = Preset{
	Name: "generic",
	Lead: AliasTable{
		"id":               {"lead_id", "leadId", "_id", "uuid"},
		"firstName":        {"first_name", "firstname", "given_name"},
		"lastName":         {"last_name", "lastname", "surname", "family_name"},
		"email":            {"email_address", "emailAddress", "mail"},
		"phone":            {"phone_number", "phoneNumber", "mobile", "mobile_phone", "telephone"},
		"company":          {"company_name", "companyName", "organization", "account_name"},
		"title":            {"job_title", "jobTitle", "position", "role"},
		"status":           {"lead_status", "leadStatus", "state"},
		"assignedTo":       {"assigned_to", "owner", "owner_id", "ownerId", "rep_id", "repId"},
		"leadSource":       {"lead_source", "source", "origin", "channel"},
		"hasBudget":        {"has_budget", "budget", "budget_confirmed"},
		"hasTimeline":      {"has_timeline", "timeline", "timeline_confirmed"},
		"createdAt":        {"created_at", "created", "create_date", "createdDate", "date_created"},
		"firstContactedAt": {"first_contacted_at", "firstContacted", "first_contact_date", "contacted_at"},
	},
	Opportunity: AliasTable{
		"id":             {"opportunity_id", "opportunityId", "deal_id", "dealId", "_id"},
		"name":           {"deal_name", "dealName", "opportunity_name", "title"},
		"contactId":      {"contact_id", "lead_id", "leadId", "person_id", "personId"},
		"value":          {"amount", "deal_value", "dealValue", "revenue", "price"},
		"status":         {"deal_status", "dealStatus", "state"},
		"stage":          {"deal_stage", "dealStage", "pipeline_stage", "stage_name", "stageName"},
		"assignedTo":     {"assigned_to", "owner", "owner_id", "ownerId", "rep_id", "repId"},
		"createdAt":      {"created_at", "created", "create_date", "add_time"},
		"updatedAt":      {"updated_at", "updated", "modified_at", "last_modified", "update_time"},
		"stageChangedAt": {"stage_changed_at", "stage_change_time", "last_stage_change"},
		"lostReason":     {"lost_reason", "lostReason", "loss_reason", "closed_lost_reason"},
	},
	Activity: AliasTable{
		"id":          {"activity_id", "activityId", "_id"},
		"type":        {"activity_type", "activityType", "kind"},
		"contactId":   {"contact_id", "lead_id", "leadId", "person_id", "personId"},
		"dealId":      {"deal_id", "opportunity_id", "opportunityId"},
		"performedBy": {"performed_by", "rep_id", "repId", "user_id", "userId", "owner"},
		"outcome":     {"result", "disposition", "call_outcome", "status"},
		"createdAt":   {"created_at", "timestamp", "date", "occurred_at", "activity_date"},
	},
	Rep: AliasTable{
		"id":     {"rep_id", "repId", "user_id", "userId", "_id"},
		"name":   {"full_name", "fullName", "display_name", "username"},
		"active": {"is_active", "isActive", "enabled"},
	},
}

// providerPresets hold only the fields each provider spells differently from
// the generic tables; everything else falls through to the generic aliases.
var providerPresets = map[string]Preset{
	"hubspot": {
		Name: "hubspot",
		Lead: AliasTable{
			"firstName":        {"properties.firstname", "firstname"},
			"lastName":         {"properties.lastname", "lastname"},
			"status":           {"hs_lead_status", "lifecyclestage"},
			"leadSource":       {"hs_analytics_source", "hs_latest_source"},
			"assignedTo":       {"hubspot_owner_id"},
			"createdAt":        {"createdate", "hs_createdate"},
			"firstContactedAt": {"hs_first_engagement_date", "notes_last_contacted"},
		},
		Opportunity: AliasTable{
			"name":      {"dealname"},
			"value":     {"amount", "hs_deal_amount"},
			"stage":     {"dealstage"},
			"createdAt": {"createdate", "hs_createdate"},
			"updatedAt": {"hs_lastmodifieddate", "notes_last_updated"},
		},
		Activity: AliasTable{
			"type":      {"hs_activity_type", "engagement_type"},
			"createdAt": {"hs_timestamp", "hs_createdate"},
		},
	},
	"salesforce": {
		Name: "salesforce",
		Lead: AliasTable{
			"id":         {"Id"},
			"firstName":  {"FirstName"},
			"lastName":   {"LastName"},
			"email":      {"Email"},
			"phone":      {"Phone", "MobilePhone"},
			"company":    {"Company"},
			"title":      {"Title"},
			"status":     {"Status"},
			"assignedTo": {"OwnerId"},
			"leadSource": {"LeadSource"},
			"createdAt":  {"CreatedDate"},
		},
		Opportunity: AliasTable{
			"id":         {"Id"},
			"name":       {"Name"},
			"value":      {"Amount"},
			"stage":      {"StageName"},
			"status":     {"ForecastCategory"},
			"assignedTo": {"OwnerId"},
			"createdAt":  {"CreatedDate"},
			"updatedAt":  {"LastModifiedDate"},
			"lostReason": {"Loss_Reason__c"},
		},
		Activity: AliasTable{
			"id":          {"Id"},
			"type":        {"TaskSubtype", "Type"},
			"contactId":   {"WhoId"},
			"dealId":      {"WhatId"},
			"performedBy": {"OwnerId"},
			"createdAt":   {"CreatedDate", "ActivityDate"},
		},
		Rep: AliasTable{
			"id":     {"Id"},
			"name":   {"Name"},
			"active": {"IsActive"},
		},
	},
	"pipedrive": {
		Name: "pipedrive",
		Lead: AliasTable{
			"firstName":  {"first_name"},
			"lastName":   {"last_name"},
			"assignedTo": {"owner_id"},
			"leadSource": {"lead_source", "origin"},
			"createdAt":  {"add_time"},
		},
		Opportunity: AliasTable{
			"name":           {"title"},
			"value":          {"value", "weighted_value"},
			"contactId":      {"person_id"},
			"stage":          {"stage_id", "stage_name"},
			"assignedTo":     {"owner_id", "user_id"},
			"createdAt":      {"add_time"},
			"updatedAt":      {"update_time"},
			"stageChangedAt": {"stage_change_time"},
			"lostReason":     {"lost_reason"},
		},
		Activity: AliasTable{
			"type":        {"type", "key_string"},
			"contactId":   {"person_id"},
			"dealId":      {"deal_id"},
			"performedBy": {"user_id", "assigned_to_user_id"},
			"createdAt":   {"add_time", "due_date", "marked_as_done_time"},
		},
		Rep: AliasTable{
			"active": {"active_flag"},
		},
	},
}

// ForProvider resolves a provider name to its preset, merged over the generic
// tables. Unknown providers get the generic preset.
func ForProvider(name string) Preset {
	override, ok := providerPresets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return genericPreset
	}
	return Preset{
		Name:        override.Name,
		Lead:        mergeAliases(genericPreset.Lead, override.Lead),
		Opportunity: mergeAliases(genericPreset.Opportunity, override.Opportunity),
		Activity:    mergeAliases(genericPreset.Activity, override.Activity),
		Rep:         mergeAliases(genericPreset.Rep, override.Rep),
	}
}

// mergeAliases prepends provider aliases so they win over generic spellings.
func mergeAliases(base, override AliasTable) AliasTable {
	merged := make(AliasTable, len(base))
	for field, aliases := range base {
		merged[field] = append(append([]string{}, override[field]...), aliases...)
	}
	for field, aliases := range override {
		if _, ok := merged[field]; !ok {
			merged[field] = append([]string{}, aliases...)
		}
	}
	return merged
}
