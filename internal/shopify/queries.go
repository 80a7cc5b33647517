package shopify

const shopQuery = `
  query Shop {
    shop {
      name
    }
  }
`

const productsQuery = `
  query GetProducts($first: Int!, $after: String) {
    products(first: $first, after: $after) {
      edges {
        node {
          id
          title
          handle
          vendor
          productType
          tags
          status
          featuredImage {
            url
            altText
          }
          mediaCount {
            count
          }
          metafields(first: 20, namespace: "custom") {
            edges {
              node {
                namespace
                key
                value
                type
              }
            }
          }
        }
        cursor
      }
      pageInfo {
        hasNextPage
        endCursor
      }
    }
  }
`

const pagesQuery = `
  query GetPages($first: Int!, $after: String) {
    pages(first: $first, after: $after) {
      edges {
        node {
          id
          title
          handle
        }
        cursor
      }
      pageInfo {
        hasNextPage
        endCursor
      }
    }
  }
`

const collectionsQuery = `
  query GetCollections($first: Int!, $after: String) {
    collections(first: $first, after: $after) {
      edges {
        node {
          id
          title
          handle
        }
        cursor
      }
      pageInfo {
        hasNextPage
        endCursor
      }
    }
  }
`

const metaobjectsQuery = `
  query GetMetaobjects($type: String!, $first: Int!, $after: String) {
    metaobjects(type: $type, first: $first, after: $after) {
      edges {
        node {
          id
          handle
          fields {
            key
            value
          }
        }
        cursor
      }
      pageInfo {
        hasNextPage
        endCursor
      }
    }
  }
`

const nodesQuery = `
  query GetNodes($ids: [ID!]!) {
    nodes(ids: $ids) {
      __typename
      id
      ... on MediaImage {
        alt
        image {
          url
        }
        preview {
          image {
            url
          }
        }
      }
      ... on GenericFile {
        alt
        preview {
          image {
            url
          }
        }
      }
      ... on Page {
        title
        handle
      }
      ... on Collection {
        title
        handle
      }
      ... on Product {
        title
        handle
      }
    }
  }
`

const productMediaQuery = `
  query GetProductMedia($id: ID!, $first: Int!) {
    product(id: $id) {
      media(first: $first) {
        edges {
          node {
            ... on MediaImage {
              id
              alt
              status
              image {
                url
                width
                height
              }
              preview {
                image {
                  url
                }
              }
            }
          }
        }
      }
    }
  }
`
