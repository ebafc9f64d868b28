package store

// Schema is the literal DDL for the persisted schema described in §6. It is
// a single idempotent script, not a teacher-style DDL differ: this
// catalog's schema is fixed, not introspected or migrated at runtime.
const Schema = `
create table if not exists files (
	id text primary key,
	namespace text,
	name text,
	metadata jsonb not null default '{}',
	size bigint,
	checksums jsonb not null default '{}',
	creator text,
	created_timestamp double precision not null default extract(epoch from now()),
	check ((namespace is null) = (name is null)),
	unique (namespace, name)
);

create table if not exists parent_child (
	parent_id text not null references files(id),
	child_id text not null references files(id),
	primary key (parent_id, child_id)
);

create table if not exists datasets (
	namespace text not null,
	name text not null,
	parent_namespace text,
	parent_name text,
	frozen boolean not null default false,
	monotonic boolean not null default false,
	metadata jsonb not null default '{}',
	creator text,
	created_timestamp double precision not null default extract(epoch from now()),
	description text,
	primary key (namespace, name),
	check ((parent_namespace is null) = (parent_name is null))
);

create table if not exists files_datasets (
	file_id text not null references files(id),
	dataset_namespace text not null,
	dataset_name text not null,
	primary key (file_id, dataset_namespace, dataset_name)
);

create table if not exists namespaces (
	name text primary key,
	owner_user text,
	owner_role text,
	description text,
	creator text,
	created_timestamp double precision not null default extract(epoch from now()),
	check ((owner_user is null) <> (owner_role is null))
);

create table if not exists users (
	username text primary key,
	name text,
	email text,
	flags text not null default ''
);

create table if not exists authenticators (
	username text not null references users(username),
	type text not null,
	secrets text[] not null default '{}',
	primary key (username, type)
);

create table if not exists roles (
	name text primary key,
	description text
);

create table if not exists users_roles (
	username text not null references users(username),
	role_name text not null references roles(name),
	primary key (username, role_name)
);

create table if not exists queries (
	namespace text not null,
	name text not null,
	source text not null,
	parameters jsonb not null default '[]',
	description text,
	creator text,
	created_timestamp double precision not null default extract(epoch from now()),
	primary key (namespace, name)
);

create table if not exists parameter_categories (
	path text primary key,
	owner text not null,
	restricted boolean not null default false,
	definitions jsonb not null default '{}'
);

create or replace view files_with_provenance as
	select
		f.*,
		(select array_agg(pc.parent_id) from parent_child pc where pc.child_id = f.id) as parents,
		(select array_agg(pc.child_id) from parent_child pc where pc.parent_id = f.id) as children
	from files f;
`
