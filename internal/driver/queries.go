package driver

const (
	SaveDocumentQuery = `
		MERGE (d:Document {id: $id})
		SET d.title = $title,
			d.sha256 = $sha256,
			d.file_path = $file_path,
			d.source = $source,
			d.group_kind = $group_kind,
			d.grouped_files = $grouped_files
		RETURN d.id AS id
	`

	SavePersonMentionQuery = `
		MATCH (d:Document {id: $document_id})
		MERGE (p:Person {id: $id})
		ON CREATE SET p.name = $name
		MERGE (d)-[m:MENTIONS]->(p)
		SET m.matched_name = $name,
			m.confidence = $confidence
		RETURN p.id AS id
	`

	SaveOrganizationMentionQuery = `
		MATCH (d:Document {id: $document_id})
		MERGE (o:Organization {id: $id})
		ON CREATE SET o.name = $name
		MERGE (d)-[:MENTIONS_ORG]->(o)
		RETURN o.id AS id
	`

	SaveCoMentionQuery = `
		MATCH (source:Person {id: $source_id})
		MATCH (target:Person {id: $target_id})
		MERGE (source)-[e:CO_MENTIONED {document_id: $document_id}]->(target)
		ON CREATE SET e.uuid = $uuid,
			e.weight = $weight
		RETURN e.uuid AS uuid
	`

	GetDocumentMentionsQuery = `
		MATCH (d:Document {id: $id})-[:MENTIONS]->(p:Person)
		RETURN p.id AS id
		ORDER BY id
	`
)
