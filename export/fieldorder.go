package export

// FieldOrderTable maps a resource type to the element order its strict XML
// rendition must follow. Types absent from the table are rejected in strict
// mode and serialized generically in strictish mode.
type FieldOrderTable map[string][]string

// Has reports whether the table carries an order for the resource type.
func (t FieldOrderTable) Has(resourceType string) bool {
	_, ok := t[resourceType]
	return ok
}

// DefaultFieldOrder returns the built-in FHIR R4 core element orders for the
// resource types the strict serializer supports.
func DefaultFieldOrder() FieldOrderTable {
	return FieldOrderTable{
		"Bundle": {
			"id", "meta", "implicitRules", "language",
			"identifier", "type", "timestamp", "total", "link", "entry", "signature",
		},
		"Patient": {
			"id", "meta", "implicitRules", "language", "text", "contained", "extension", "modifierExtension",
			"identifier", "active", "name", "telecom", "gender", "birthDate", "deceasedBoolean", "deceasedDateTime",
			"address", "maritalStatus", "multipleBirthBoolean", "multipleBirthInteger", "photo", "contact",
			"communication", "generalPractitioner", "managingOrganization", "link",
		},
		"Observation": {
			"id", "meta", "implicitRules", "language", "text", "contained", "extension", "modifierExtension",
			"identifier", "basedOn", "partOf", "status", "category", "code", "subject", "focus", "encounter",
			"effectiveDateTime", "effectivePeriod", "effectiveTiming", "effectiveInstant",
			"issued", "performer",
			"valueQuantity", "valueCodeableConcept", "valueString", "valueBoolean", "valueInteger", "valueRange",
			"valueRatio", "valueSampledData", "valueTime", "valueDateTime", "valuePeriod",
			"dataAbsentReason", "interpretation", "note", "bodySite", "method", "specimen", "device",
			"referenceRange", "hasMember", "derivedFrom", "component",
		},
		"Encounter": {
			"id", "meta", "implicitRules", "language", "text", "contained", "extension", "modifierExtension",
			"identifier", "status", "statusHistory", "class", "classHistory", "type", "serviceType", "priority",
			"subject", "episodeOfCare", "basedOn", "participant", "appointment", "period", "length",
			"reasonCode", "reasonReference", "diagnosis", "account",
			"hospitalization", "location", "serviceProvider", "partOf",
		},
		"Condition": {
			"id", "meta", "implicitRules", "language", "text", "contained", "extension", "modifierExtension",
			"identifier", "clinicalStatus", "verificationStatus", "category", "severity", "code", "bodySite",
			"subject", "encounter",
			"onsetDateTime", "onsetAge", "onsetPeriod", "onsetRange", "onsetString",
			"abatementDateTime", "abatementAge", "abatementPeriod", "abatementRange", "abatementString",
			"recordedDate", "recorder", "asserter",
			"stage", "evidence", "note",
		},
		"StructureDefinition": {
			"id", "meta", "implicitRules", "language", "text", "contained", "extension", "modifierExtension",
			"url", "identifier", "version", "name", "title", "status", "experimental", "date", "publisher",
			"contact", "description", "useContext", "jurisdiction", "purpose", "copyright", "keyword",
			"fhirVersion", "mapping",
			"kind", "abstract", "context", "contextInvariant",
			"type", "baseDefinition", "derivation",
			"snapshot", "differential",
		},
		"ValueSet": {
			"id", "meta", "implicitRules", "language", "text", "contained", "extension", "modifierExtension",
			"url", "identifier", "version", "name", "title", "status", "experimental", "date", "publisher",
			"contact", "description", "useContext", "jurisdiction", "immutable", "purpose", "copyright",
			"compose", "expansion",
		},
		"CodeSystem": {
			"id", "meta", "implicitRules", "language", "text", "contained", "extension", "modifierExtension",
			"url", "identifier", "version", "name", "title", "status", "experimental", "date", "publisher",
			"contact", "description", "useContext", "jurisdiction", "purpose", "copyright",
			"caseSensitive", "valueSet", "hierarchyMeaning", "compositional", "versionNeeded", "content",
			"supplements", "count", "filter", "property", "concept",
		},
		"MedicationRequest": {
			"id", "meta", "implicitRules", "language", "text", "contained", "extension", "modifierExtension",
			"identifier", "status", "statusReason", "intent", "category", "priority", "doNotPerform",
			"reportedBoolean", "reportedReference",
			"medicationCodeableConcept", "medicationReference",
			"subject", "encounter", "supportingInformation", "authoredOn", "requester", "performer",
			"performerType", "recorder", "reasonCode", "reasonReference",
			"instantiatesCanonical", "instantiatesUri", "basedOn", "groupIdentifier", "courseOfTherapyType",
			"insurance", "note", "dosageInstruction", "dispenseRequest", "substitution",
			"priorPrescription", "detectedIssue", "eventHistory",
		},
		"Procedure": {
			"id", "meta", "implicitRules", "language", "text", "contained", "extension", "modifierExtension",
			"identifier", "instantiatesCanonical", "instantiatesUri", "basedOn", "partOf", "status",
			"statusReason", "category", "code", "subject", "encounter",
			"performedDateTime", "performedPeriod", "performedString", "performedAge", "performedRange",
			"recorder", "asserter", "performer", "location", "reasonCode", "reasonReference",
			"bodySite", "outcome", "report", "complication", "complicationDetail", "followUp",
			"note", "focalDevice", "usedReference", "usedCode",
		},
		"Medication": {
			"id", "meta", "implicitRules", "language", "text", "contained", "extension", "modifierExtension",
			"identifier", "code", "status", "manufacturer", "form", "amount", "ingredient", "batch",
		},
		"MedicationDispense": {
			"id", "meta", "implicitRules", "language", "text", "contained", "extension", "modifierExtension",
			"identifier", "partOf", "status", "statusReasonCodeableConcept", "statusReasonReference",
			"category", "medicationCodeableConcept", "medicationReference",
			"subject", "context", "supportingInformation", "performedDateTime", "performedPeriod",
			"performer", "location", "authorizingPrescription", "type", "quantity", "daysSupply",
			"whenPrepared", "whenHandedOver",
			"destination", "receiver", "note", "dosageInstruction", "substitution", "detectedIssue", "eventHistory",
		},
	}
}
