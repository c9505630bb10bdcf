// LEGO Shop Server - Graph-backed catalog, orders and recommendations
// Copyright 2026 Fadikk367
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Fadikk367/lego-shop-server

package graph

// productColumns projects p (with category node c) into the column set read
// by fields.toProduct.
//
// Every statement in this file keys nodes by id(n) rather than elementId(n).
// The API exposes integer ids, and elementId returns an opaque string, so
// id(n) is kept on purpose even though Neo4j 5 logs a deprecation
// notification for it. Moving off it means storing our own integer id
// property with a uniqueness constraint.
const productColumns = `id(p) AS id, p.name AS name, p.price AS price, p.elements AS elements,
       p.minifigures AS minifigures, p.imageUrl AS imageUrl, c.name AS category`

const (
	cypherCreateCategory = `
CREATE (c:Category {name: $name})
RETURN id(c) AS id, c.name AS name`

	cypherListCategories = `
MATCH (c:Category)
RETURN id(c) AS id, c.name AS name
ORDER BY id`

	cypherCreateProduct = `
MATCH (c:Category) WHERE id(c) = $categoryId
CREATE (c)<-[:BELONGS_TO]-(p:Product {
  name: $name, price: $price, elements: $elements,
  minifigures: $minifigures, imageUrl: $imageUrl
})
RETURN ` + productColumns

	cypherGetProduct = `
MATCH (p:Product)-[:BELONGS_TO]->(c:Category)
WHERE id(p) = $productId
RETURN ` + productColumns

	cypherListProducts = `
MATCH (p:Product)-[:BELONGS_TO]->(c:Category)
RETURN ` + productColumns + `
ORDER BY id`

	cypherProductsByID = `
UNWIND range(0, size($productIds) - 1) AS idx
MATCH (p:Product)-[:BELONGS_TO]->(c:Category)
WHERE id(p) = $productIds[idx]
RETURN ` + productColumns + `
ORDER BY idx`

	cypherRateProduct = `
MATCH (p:Product) WHERE id(p) = $productId
MATCH (u:User) WHERE id(u) = $userId
MERGE (u)-[r:RATES]->(p)
SET r.value = $value
RETURN id(r) AS id, r.value AS value`

	cypherNodeExists = `
MATCH (n) WHERE id(n) = $id AND $label IN labels(n)
RETURN count(n) AS found`

	// Mean over incoming RATES only; unrated products never match.
	cypherTopRated = `
MATCH (p:Product)<-[r:RATES]-(:User)
WITH p, avg(r.value) AS rating
ORDER BY rating DESC, id(p) ASC
LIMIT $limit
MATCH (p)-[:BELONGS_TO]->(c:Category)
RETURN ` + productColumns + `, rating
ORDER BY rating DESC, id ASC`

	cypherAlsoBought = `
MATCH (seed:Product)<-[:CONTAINS]-(o:Order)-[:CONTAINS]->(p:Product)
WHERE id(seed) = $productId AND p <> seed
WITH p, count(DISTINCT o) AS orders
ORDER BY orders DESC, id(p) ASC
LIMIT $limit
MATCH (p)-[:BELONGS_TO]->(c:Category)
RETURN ` + productColumns + `, orders
ORDER BY orders DESC, id ASC`

	// User-based collaborative filtering. Means are taken over all of a
	// user's ratings; neighbors need $minShared co-rated products and a
	// non-zero denominator; the top $neighbors by correlation vote with
	// pearson * rating on products the target has not rated.
	cypherRecommendedFor = `
MATCH (u1:User)-[r:RATES]->(:Product)
WHERE id(u1) = $userId
WITH u1, avg(r.value) AS u1Mean
MATCH (u1)-[r1:RATES]->(shared:Product)<-[r2:RATES]-(u2:User)
WHERE u2 <> u1
WITH u1, u1Mean, u2, collect({r1: r1.value, r2: r2.value}) AS pairs
WHERE size(pairs) >= $minShared
MATCH (u2)-[r:RATES]->(:Product)
WITH u1, u1Mean, u2, pairs, avg(r.value) AS u2Mean
UNWIND pairs AS pair
WITH u1, u2,
     sum((pair.r1 - u1Mean) * (pair.r2 - u2Mean)) AS nom,
     sqrt(sum((pair.r1 - u1Mean) ^ 2) * sum((pair.r2 - u2Mean) ^ 2)) AS denom
WHERE denom <> 0
WITH u1, u2, nom / denom AS pearson
ORDER BY pearson DESC, id(u2) ASC
LIMIT $neighbors
MATCH (u2)-[r:RATES]->(p:Product)
WHERE NOT EXISTS { MATCH (u1)-[:RATES]->(p) }
WITH p, sum(pearson * r.value) AS score
ORDER BY score DESC, id(p) ASC
LIMIT $limit
MATCH (p)-[:BELONGS_TO]->(c:Category)
RETURN ` + productColumns + `, score
ORDER BY score DESC, id ASC`

	cypherResolveOrder = `
OPTIONAL MATCH (u:User) WHERE id(u) = $userId
WITH count(u) AS users
OPTIONAL MATCH (p:Product) WHERE id(p) IN $productIds
RETURN users, collect(id(p)) AS found`

	cypherPlaceOrder = `
MATCH (u:User) WHERE id(u) = $userId
CREATE (u)-[:PLACED {time: $time}]->(o:Order {time: $time})
WITH o
UNWIND $productIds AS productId
MATCH (p:Product) WHERE id(p) = productId
CREATE (o)-[:CONTAINS]->(p)
RETURN id(o) AS id, count(p) AS linked`

	cypherOrderHistory = `
MATCH (u:User)-[pl:PLACED]->(o:Order)-[:CONTAINS]->(p:Product)-[:BELONGS_TO]->(c:Category)
WHERE id(u) = $userId
OPTIONAL MATCH (u)-[r:RATES]->(p)
WITH o, pl, p, c, r
ORDER BY id(p)
RETURN id(o) AS id, pl.time AS time,
       collect({id: id(p), name: p.name, price: p.price, elements: p.elements,
                minifigures: p.minifigures, imageUrl: p.imageUrl,
                category: c.name, rate: r.value}) AS products
ORDER BY time DESC, id DESC`

	cypherCreateUser = `
CREATE (u:User {name: $name, email: $email, password: $password})
RETURN id(u) AS id, u.name AS name, u.email AS email`

	cypherUserByEmail = `
MATCH (u:User {email: $email})
RETURN id(u) AS id, u.name AS name, u.email AS email, u.password AS password
LIMIT 1`

	cypherEmailTaken = `
MATCH (u:User {email: $email})
RETURN count(u) AS taken`

	cypherPing = `RETURN 1 AS ok`
)

// Schema statements applied by EnsureSchema. Both are idempotent.
var schemaStatements = []string{
	`CREATE CONSTRAINT user_email_unique IF NOT EXISTS FOR (u:User) REQUIRE u.email IS UNIQUE`,
	`CREATE INDEX category_name IF NOT EXISTS FOR (c:Category) ON (c.name)`,
}
